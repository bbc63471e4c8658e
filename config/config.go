package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      App      `yaml:"app"`
	Server   Server   `yaml:"server"`
	Upload   Upload   `yaml:"upload"`
	Storage  Storage  `yaml:"storage"`
	Deepgram Deepgram `yaml:"deepgram"`
	Gemini   Gemini   `yaml:"gemini"`
}

type App struct {
	Environment string `yaml:"environment"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type Upload struct {
	MaxSizeMB int64 `yaml:"max_size_mb"`
}

type Storage struct {
	Backend        string `yaml:"backend"` // minio or local
	LocalDir       string `yaml:"local_dir"`
	MinioURL       string `yaml:"minio_url"`
	MinioAccessID  string `yaml:"minio_access_id"`
	MinioSecretKey string `yaml:"minio_secret_access_key"`
	MinioBucket    string `yaml:"minio_bucket"`
}

type Deepgram struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Load reads config.yaml from path with environment variable overrides
// (GEMINI_API_KEY overrides gemini.api_key and so on).
func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine: everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		Upload: Upload{
			MaxSizeMB: viper.GetInt64("upload.max_size_mb"),
		},
		Storage: Storage{
			Backend:        viper.GetString("storage.backend"),
			LocalDir:       viper.GetString("storage.local_dir"),
			MinioURL:       viper.GetString("minio.url"),
			MinioAccessID:  viper.GetString("minio.access_id"),
			MinioSecretKey: viper.GetString("minio.secret_access_key"),
			MinioBucket:    viper.GetString("minio.bucket"),
		},
		Deepgram: Deepgram{
			APIKey:  viper.GetString("deepgram.api_key"),
			BaseURL: viper.GetString("deepgram.base_url"),
			Model:   viper.GetString("deepgram.model"),
		},
		Gemini: Gemini{
			APIKey: viper.GetString("gemini.api_key"),
			Model:  viper.GetString("gemini.model"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills defaults and rejects impossible combinations. API keys are
// deliberately not required here: a missing credential fails the operation
// that needs it, not process startup.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		c.App.Environment = "develop"
	}
	if c.Server.HttpPort == "" {
		c.Server.HttpPort = "8080"
	}
	if c.Server.Workers == 0 {
		c.Server.Workers = 1
	}
	if c.Upload.MaxSizeMB == 0 {
		c.Upload.MaxSizeMB = 100
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			c.Storage.LocalDir = "data/uploads"
		}
	case "minio":
		if c.Storage.MinioURL == "" {
			return fmt.Errorf("minio.url is required for the minio backend")
		}
		if c.Storage.MinioBucket == "" {
			return fmt.Errorf("minio.bucket is required for the minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Deepgram.Model == "" {
		c.Deepgram.Model = "nova-2"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	return nil
}
