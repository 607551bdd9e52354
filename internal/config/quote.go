package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds configuration for the offline quote command.
type QuoteConfig struct {
	ReserveIn  string
	ReserveOut string
	AmountIn   string
	FeeBps     uint32
	Strategy   string
	LogLevel   string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("EXCHANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("fee-bps", uint32(30))
	v.SetDefault("strategy", "constant_product")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return QuoteConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return QuoteConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return QuoteConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := QuoteConfig{
		ReserveIn:  v.GetString("reserve-in"),
		ReserveOut: v.GetString("reserve-out"),
		AmountIn:   v.GetString("amount-in"),
		FeeBps:     v.GetUint32("fee-bps"),
		Strategy:   v.GetString("strategy"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}
