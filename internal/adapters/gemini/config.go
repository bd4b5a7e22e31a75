// internal/adapters/gemini/config.go
package gemini

import "time"

// Config holds the Gemini adapter settings
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.CallTimeout == 0 {
		// Expiry is treated as an extraction failure upstream and the
		// pipeline falls to manual extraction.
		c.CallTimeout = 25 * time.Second
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst == 0 {
		c.Burst = 4
	}
}
