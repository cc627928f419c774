package commons

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"stockwarden/internal/config"
)

// fileConfig mirrors config.Config with durations as strings, since YAML
// has no native duration type.
type fileConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Name            string `yaml:"name"`
		MaxOpenConns    int    `yaml:"maxOpenConns"`
		MaxIdleConns    int    `yaml:"maxIdleConns"`
		ConnMaxLifetime string `yaml:"connMaxLifetime"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Stock struct {
		ReservationTTL   string `yaml:"reservationTtl"`
		TxTimeout        string `yaml:"txTimeout"`
		MaxRetryAttempts int    `yaml:"maxRetryAttempts"`
		AdminToken       string `yaml:"adminToken"`
	} `yaml:"stock"`
}

func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(fc.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("parsing database.connMaxLifetime: %w", err)
	}

	reservationTTL, err := time.ParseDuration(fc.Stock.ReservationTTL)
	if err != nil {
		return nil, fmt.Errorf("parsing stock.reservationTtl: %w", err)
	}

	txTimeout, err := time.ParseDuration(fc.Stock.TxTimeout)
	if err != nil {
		return nil, fmt.Errorf("parsing stock.txTimeout: %w", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: fc.Server.Port,
		},
		Database: config.DatabaseConfig{
			Host:            fc.Database.Host,
			Port:            fc.Database.Port,
			User:            fc.Database.User,
			Password:        fc.Database.Password,
			Name:            fc.Database.Name,
			MaxOpenConns:    fc.Database.MaxOpenConns,
			MaxIdleConns:    fc.Database.MaxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: config.LogConfig{
			Level: fc.Log.Level,
		},
		Stock: config.StockConfig{
			ReservationTTL:   reservationTTL,
			TxTimeout:        txTimeout,
			MaxRetryAttempts: fc.Stock.MaxRetryAttempts,
			AdminToken:       fc.Stock.AdminToken,
		},
	}

	return cfg, nil
}
