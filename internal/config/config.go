// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading accepts context.Context as the first parameter.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"strings"
	"time"

	"github.com/okian/peereval/internal/domain/model"
)

// Store drivers.
const (
	DriverRemote = "remote"
	DriverMemory = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreDriver selects the backing store: remote or memory.
	StoreDriver string `koanf:"store_driver" validate:"oneof=remote memory"`

	// StoreURL is the spreadsheet web endpoint used by the remote driver.
	StoreURL string `koanf:"store_url" validate:"required_if=StoreDriver remote,omitempty,url"`

	// StoreTimeoutMS bounds each store round trip.
	StoreTimeoutMS int `koanf:"store_timeout_ms" validate:"gt=0"`

	// StoreRatePerSec and StoreBurst pace outbound store calls. Zero rate disables pacing.
	StoreRatePerSec float64 `koanf:"store_rate_per_sec" validate:"gte=0"`
	StoreBurst      int     `koanf:"store_burst" validate:"gte=1"`

	// MaxWeek is the highest week accepted. Zero removes the bound.
	MaxWeek int `koanf:"max_week" validate:"gte=0"`

	// DedupeSize sets how many submission ids are remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"gt=0"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins" validate:"dive,required"`

	// MetricsEnabled toggles recording of service metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is how often snapshot and system gauges are published.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms" validate:"gt=0"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels" validate:"dive,keys,required,endkeys"`

	// Members seeds the roster for the memory driver.
	Members []MemberConfig `koanf:"members" validate:"dive"`
}

// MemberConfig is one seeded roster entry.
type MemberConfig struct {
	Number string `koanf:"number"`
	Name   string `koanf:"name" validate:"required"`
	Course string `koanf:"course"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		StoreDriver:     DriverMemory,
		StoreTimeoutMS:  15_000,
		StoreRatePerSec: 2,
		StoreBurst:      2,
		MaxWeek:         15,
		DedupeSize:      10_000,

		MetricsEnabled:   true,
		MetricsRefreshMS: 10_000,
	}
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// SeedMembers converts Members to roster entries.
func (c *Config) SeedMembers() []model.Member {
	out := make([]model.Member, 0, len(c.Members))
	for _, m := range c.Members {
		label := strings.TrimSpace(m.Course)
		out = append(out, model.Member{
			Number: strings.TrimSpace(m.Number),
			Name:   strings.TrimSpace(m.Name),
			Track:  model.ParseTrack(label),
			Label:  label,
		})
	}
	return out
}
