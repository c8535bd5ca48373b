// internal/workers/psychometric/generate-assessment/config.go
package generateassessment

import (
	"time"

	"psychometric-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig allows for the LLM round trip plus its retries.
func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := time.Duration(wc.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Config{Timeout: timeout}
}
