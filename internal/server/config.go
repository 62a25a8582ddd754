package server

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/PiyushJZ/streamly-auth-service/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")

	// Secrets come from the environment, never from the config file.
	v.SetEnvPrefix("AUTH")
	v.AutomaticEnv()
	if err := v.BindEnv("auth.access_secret", "AUTH_JWT_SECRET_ACCESS"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("auth.refresh_secret", "AUTH_JWT_SECRET_REFRESH"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("auth.session_secret", "AUTH_SESSION_SECRET"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config config.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("grpc.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("grpc.%s", env), &config.GRPC); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	return &config, nil
}
