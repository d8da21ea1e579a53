// Package config loads the application settings file. Every key has a
// default, so the service starts with no config file at all; values can be
// overridden per key through REVENUE_ATLAS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Storage struct {
	DbPath string `mapstructure:"db_path"`
}

type Warehouses struct {
	ProfilesPath string `mapstructure:"profiles_path"`
}

// FileDrop points at the S3 bucket clearinghouse remittance exports land in.
// An empty bucket disables ingestion.
type FileDrop struct {
	Profile string `mapstructure:"profile"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

type Schedules struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type Config struct {
	Server     Server     `mapstructure:"server"`
	Storage    Storage    `mapstructure:"storage"`
	Warehouses Warehouses `mapstructure:"warehouses"`
	FileDrop   FileDrop   `mapstructure:"file_drop"`
	Schedules  Schedules  `mapstructure:"schedules"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".revenue-atlas")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("REVENUE_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// SERVER_HOST and SERVER_PORT come from the .env file.
	_ = v.BindEnv("server.host", "REVENUE_ATLAS_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", "REVENUE_ATLAS_SERVER_PORT", "SERVER_PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.db_path", "revenue-atlas.db")
	v.SetDefault("warehouses.profiles_path", defaultProfilesPath())
	v.SetDefault("file_drop.profile", "default")
	v.SetDefault("file_drop.bucket", "")
	v.SetDefault("file_drop.prefix", "remits/")
	v.SetDefault("schedules.poll_interval", "30s")
}

func defaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rcmprofiles"
	}
	return filepath.Join(home, ".rcmprofiles")
}
