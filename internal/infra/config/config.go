package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`

	Port string `mapstructure:"port" yaml:"port"`
}

type DownloadConfig struct {
	OutDir string `mapstructure:"out_dir" yaml:"out_dir"`
	// JobTimeout bounds a single background job. Zero disables the deadline,
	// which leaves a stalled resolver call in "downloading" indefinitely.
	JobTimeout time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`
}

type ResolverConfig struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
	// CookiesFile is handed to the resolver for sites that answer anonymous
	// requests with a bot challenge.
	CookiesFile string `mapstructure:"cookies_file" yaml:"cookies_file"`
}

type HistoryConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	// Retention controls how long terminal jobs and their files are kept.
	// Zero keeps everything forever.
	Retention     time.Duration `mapstructure:"retention" yaml:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

func Load(path string) (*Config, error) {

	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("port", "8080")
	v.SetDefault("download.out_dir", "./downloads")
	v.SetDefault("download.job_timeout", time.Duration(0))
	v.SetDefault("resolver.binary", "yt-dlp")
	v.SetDefault("resolver.cookies_file", "")
	v.SetDefault("history.sqlite_path", "./data/govdl.db")
	v.SetDefault("history.retention", time.Duration(0))
	v.SetDefault("history.sweep_interval", 15*time.Minute)
	v.SetDefault("log.path", "govdl.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)

	// The config file is optional: every key has a usable default and can be
	// overridden through the environment.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("GOVDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.OutDir == "" {
		c.Download.OutDir = "./downloads"
	}

	if c.Resolver.Binary == "" {
		return fmt.Errorf("resolver.binary is required")
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}

	if c.History.Retention > 0 && c.History.SweepInterval <= 0 {
		c.History.SweepInterval = 15 * time.Minute
	}

	return nil
}
