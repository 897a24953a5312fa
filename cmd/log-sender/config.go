package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"log-receiver/internal/client"
	"log-receiver/internal/logging"
	"log-receiver/internal/sender"
)

const DefaultTargetURL = "http://localhost:5560/logs"

var errMissingTargetURL = errors.New("target.url must be specified")

type SenderConfig struct {
	Target   client.Config       `yaml:"target"`
	Engine   sender.EngineConfig `yaml:"engine"`
	Messages []string            `yaml:"messages"`
	Log      logging.Config      `yaml:"log"`
}

func DefaultSender() SenderConfig {
	return SenderConfig{
		Target: client.Config{URL: DefaultTargetURL, Timeout: 5 * time.Second},
		Engine: sender.EngineConfig{Workers: 1, Rate: 10},
		Log:    logging.Config{Level: "info"},
	}
}

func LoadSender(path string) (*SenderConfig, error) {
	cfg := DefaultSender()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v, ok := os.LookupEnv("TARGET_URL"); ok {
		cfg.Target.URL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *SenderConfig) Validate() error {
	if cfg.Target.URL == "" {
		return errMissingTargetURL
	}
	if cfg.Target.Timeout <= 0 {
		cfg.Target.Timeout = 5 * time.Second
	}
	if cfg.Engine.Workers <= 0 {
		cfg.Engine.Workers = 1
	}
	return nil
}
