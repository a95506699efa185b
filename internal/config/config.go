package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
// Loaded once at startup and treated as immutable for the process lifetime.
type Config struct {
	Server struct {
		Addr       string
		CORSOrigin string
	}
	Database struct {
		Path string
	}
	JWT struct {
		Secret string
		// Token lifetime for a plain login, and for "remember me".
		SessionDays  int
		RememberDays int
	}
	Sweep struct {
		Interval time.Duration
	}
	Stats struct {
		Interval time.Duration
	}
}

// Load reads configuration from environment variables and an optional
// config file in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.corsorigin", "http://localhost:4200")
	v.SetDefault("database.path", "data/dumps.db")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.sessiondays", 3)
	v.SetDefault("jwt.rememberdays", 365)
	v.SetDefault("sweep.interval", time.Hour)
	v.SetDefault("stats.interval", 30*time.Second)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return Config{}, fmt.Errorf("DUMP_JWT_SECRET must be set")
	}

	return cfg, nil
}
