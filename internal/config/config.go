package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	DataDir   string `envconfig:"DATA_DIR" default:"./data"`
	PublicDir string `envconfig:"PUBLIC_DIR" default:"./public"`
	Workers   int    `envconfig:"WORKERS" default:"8"`
	QueueSize int    `envconfig:"QUEUE_SIZE" default:"256"`
	AdminUser string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPass string `envconfig:"ADMIN_PASS" default:"admin123"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("storefront", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
