package updatesystemsettings

import (
	"time"

	"accelerator-portal/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(w config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 10 * time.Second}
	if w.Timeout > 0 {
		cfg.Timeout = time.Duration(w.Timeout) * time.Millisecond
	}
	return cfg
}
