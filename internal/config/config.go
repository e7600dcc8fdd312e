// Package config загружает конфигурацию host-процесса из YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Simulator holds all configuration for the simulator host.
type Simulator struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
	DataDir  string `yaml:"data_dir"`  // каталог с YAML game data
	Seed     uint64 `yaml:"seed"`      // seed для детерминированных прогонов

	Rates Rates `yaml:"rates"`

	// Database — опциональная персистентность сессий хоста.
	// Пустой host отключает её.
	Database DatabaseConfig `yaml:"database"`
}

// Rates — глобальные множители игровой экономики.
// Применяются host'ом поверх авторских данных: ядро само по себе
// множители не навязывает.
type Rates struct {
	LootChanceMultiplier  float64 `yaml:"loot_chance"`
	LootAmountMultiplier  float64 `yaml:"loot_amount"`
	ExperienceMultiplier  float64 `yaml:"experience"`
	CraftChanceMultiplier float64 `yaml:"craft_chance"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
// Пустой Host означает, что персистентность выключена.
func (d DatabaseConfig) DSN() string {
	if d.Host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSimulator returns Simulator config with sensible defaults.
func DefaultSimulator() Simulator {
	return Simulator{
		LogLevel: "info",
		DataDir:  "data",
		Seed:     1,
		Rates: Rates{
			LootChanceMultiplier:  1.0,
			LootAmountMultiplier:  1.0,
			ExperienceMultiplier:  1.0,
			CraftChanceMultiplier: 1.0,
		},
	}
}

// LoadSimulator читает конфиг из YAML-файла поверх дефолтов.
func LoadSimulator(path string) (Simulator, error) {
	cfg := DefaultSimulator()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет согласованность конфига.
func (c Simulator) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Rates.LootChanceMultiplier < 0 ||
		c.Rates.LootAmountMultiplier < 0 ||
		c.Rates.ExperienceMultiplier < 0 ||
		c.Rates.CraftChanceMultiplier < 0 {
		return fmt.Errorf("rates cannot be negative")
	}
	return nil
}
