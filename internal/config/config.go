package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Common holds settings shared by every command.
type Common struct {
	Networks     string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
	LogLevel     string
}

// TokenConfig drives the token and supply commands.
type TokenConfig struct {
	Common
	ChainID uint64
	Address string
	Symbol  string
	Name    string
}

// SwapConfig drives the swap command.
type SwapConfig struct {
	Common
	ChainID    uint64
	TokenIn    string
	TokenOut   string
	Amount     string
	PrivateKey string
	Slippage   string
	Recipient  string
	Deadline   uint64
	TTL        time.Duration
	Journal    string
	PGDSN      string
}

// HistoryConfig drives the history command.
type HistoryConfig struct {
	ChainID  uint64
	Limit    int
	Journal  string
	PGDSN    string
	LogLevel string
}

// LoadToken merges config file, environment variables, and flags into TokenConfig.
func LoadToken(cfgFile string, flags *pflag.FlagSet) (TokenConfig, error) {
	v, err := load(cfgFile, flags)
	if err != nil {
		return TokenConfig{}, err
	}

	cfg := TokenConfig{
		Common:  common(v),
		ChainID: v.GetUint64("chain-id"),
		Address: strings.TrimSpace(v.GetString("address")),
		Symbol:  v.GetString("symbol"),
		Name:    v.GetString("name"),
	}
	return cfg, nil
}

// LoadSwap merges config file, environment variables, and flags into SwapConfig.
func LoadSwap(cfgFile string, flags *pflag.FlagSet) (SwapConfig, error) {
	v, err := load(cfgFile, flags)
	if err != nil {
		return SwapConfig{}, err
	}

	deadline, err := ParseTimestamp(v.GetString("deadline"))
	if err != nil {
		return SwapConfig{}, fmt.Errorf("parse deadline: %w", err)
	}

	ttl := v.GetDuration("ttl")
	if ttl < time.Second {
		return SwapConfig{}, fmt.Errorf("ttl must be at least 1s, got %s", ttl)
	}

	cfg := SwapConfig{
		Common:     common(v),
		ChainID:    v.GetUint64("chain-id"),
		TokenIn:    strings.TrimSpace(v.GetString("token-in")),
		TokenOut:   strings.TrimSpace(v.GetString("token-out")),
		Amount:     strings.TrimSpace(v.GetString("amount")),
		PrivateKey: strings.TrimSpace(v.GetString("private-key")),
		Slippage:   v.GetString("slippage"),
		Recipient:  strings.TrimSpace(v.GetString("recipient")),
		Deadline:   deadline,
		TTL:        ttl,
		Journal:    v.GetString("journal"),
		PGDSN:      v.GetString("pg-dsn"),
	}
	return cfg, nil
}

// LoadHistory merges config file, environment variables, and flags into HistoryConfig.
func LoadHistory(cfgFile string, flags *pflag.FlagSet) (HistoryConfig, error) {
	v, err := load(cfgFile, flags)
	if err != nil {
		return HistoryConfig{}, err
	}

	cfg := HistoryConfig{
		ChainID:  v.GetUint64("chain-id"),
		Limit:    v.GetInt("limit"),
		Journal:  v.GetString("journal"),
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}
	return cfg, nil
}

func load(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DEXRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("networks", "./networks.yaml")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("log-level", "info")
	v.SetDefault("slippage", "0.5")
	v.SetDefault("ttl", 30*time.Minute)
	v.SetDefault("limit", 20)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func common(v *viper.Viper) Common {
	return Common{
		Networks:     v.GetString("networks"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Timeout:      v.GetDuration("timeout"),
		LogLevel:     v.GetString("log-level"),
	}
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
