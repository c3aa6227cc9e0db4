package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Universe    UniverseConfig   `mapstructure:"universe"`
	Trading     TradingConfig    `mapstructure:"trading"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type MarketDataConfig struct {
	CycleInterval string `mapstructure:"cycle_interval"`
	HistoryWindow string `mapstructure:"history_window"`
	DepthLevels   int    `mapstructure:"depth_levels"`
	Concurrency   int    `mapstructure:"concurrency"`
	ReportTTL     string `mapstructure:"report_ttl"`
}

// Durations are validated at load time, so parsing here cannot fail.
func (mc MarketDataConfig) CycleIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(mc.CycleInterval)
	return d
}

func (mc MarketDataConfig) HistoryWindowDuration() time.Duration {
	d, _ := time.ParseDuration(mc.HistoryWindow)
	return d
}

func (mc MarketDataConfig) ReportTTLDuration() time.Duration {
	d, _ := time.ParseDuration(mc.ReportTTL)
	return d
}

type UniverseConfig struct {
	StableTokens    []string `mapstructure:"stable_tokens"`
	QuoteCurrencies []string `mapstructure:"quote_currencies"`
	StableLimit     int      `mapstructure:"stable_limit"`
	AltLimit        int      `mapstructure:"alt_limit"`
}

// SymbolConfig carries per-symbol trade parameters: the exchange instrument
// names and the sizing constraints a simulated order must respect.
type SymbolConfig struct {
	FuturesSymbol string  `mapstructure:"futures_symbol"`
	PerpSymbol    string  `mapstructure:"perp_symbol"`
	MinSize       float64 `mapstructure:"min_size"`
	PriceDecimals int     `mapstructure:"price_decimals"`
}

type TradingConfig struct {
	OrderSizeUSD float64                 `mapstructure:"order_size_usd"`
	Symbols      map[string]SymbolConfig `mapstructure:"symbols"`
}

// Symbol looks up per-symbol trade parameters, case-insensitively.
func (tc TradingConfig) Symbol(symbol string) (SymbolConfig, bool) {
	sc, ok := tc.Symbols[strings.ToUpper(symbol)]
	if !ok {
		sc, ok = tc.Symbols[strings.ToLower(symbol)]
	}
	return sc, ok
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	for name, value := range map[string]string{
		"market_data.cycle_interval": config.MarketData.CycleInterval,
		"market_data.history_window": config.MarketData.HistoryWindow,
		"market_data.report_ttl":     config.MarketData.ReportTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if config.Trading.OrderSizeUSD <= 0 {
		return nil, fmt.Errorf("trading.order_size_usd must be positive, got %v", config.Trading.OrderSizeUSD)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "poc_finance")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", 0)

	// Market data
	viper.SetDefault("market_data.cycle_interval", "5m")
	viper.SetDefault("market_data.history_window", "24h")
	viper.SetDefault("market_data.depth_levels", 10)
	viper.SetDefault("market_data.concurrency", 4)
	viper.SetDefault("market_data.report_ttl", "15m")

	// Universe
	viper.SetDefault("universe.stable_tokens", []string{"USDT", "USDC", "DAI", "BUSD", "UST"})
	viper.SetDefault("universe.quote_currencies", []string{"USD", "EUR", "JPY"})
	viper.SetDefault("universe.stable_limit", 5)
	viper.SetDefault("universe.alt_limit", 5)

	// Trading
	viper.SetDefault("trading.order_size_usd", 100.0)
	viper.SetDefault("trading.symbols", map[string]map[string]interface{}{
		"BTC": {
			"futures_symbol": "PI_XBTUSD",
			"perp_symbol":    "PF_XBTUSD",
			"min_size":       0.0001,
			"price_decimals": 1,
		},
		"ETH": {
			"futures_symbol": "PI_ETHUSD",
			"perp_symbol":    "PF_ETHUSD",
			"min_size":       0.001,
			"price_decimals": 2,
		},
		"SOL": {
			"futures_symbol": "",
			"perp_symbol":    "PF_SOLUSD",
			"min_size":       0.1,
			"price_decimals": 3,
		},
	})
}
