package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/pricebook/pkg/logging"
	"github.com/joripage/pricebook/pkg/tick"
)

type AppConfig struct {
	ServiceName  string `yaml:"service_name"`
	LogLevel     string `yaml:"log_level"`
	TickSize     string `yaml:"tick_size"`
	ScenarioFile string `yaml:"scenario_file"`
}

func Default() *AppConfig {
	return &AppConfig{
		ServiceName: "pricebook",
		LogLevel:    "info",
		TickSize:    "1",
	}
}

// Load reads the YAML config at filePath, or $CONFIG_FILE when filePath is empty,
// expanding environment variables before parsing.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := Default()

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		sugar.Error("Invalid config")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	_, err := c.Scale()
	return err
}

func (c *AppConfig) Level() (logging.LogLevel, error) {
	return logging.ParseLevel(c.LogLevel)
}

func (c *AppConfig) Scale() (tick.Scale, error) {
	if c.TickSize == "" {
		return tick.Unit(), nil
	}
	return tick.ParseScale(c.TickSize)
}
