package config

import "time"

// CLIConfig is the configuration for pushmesh-cli.
type CLIConfig struct {
	DefaultServer string        `yaml:"default_server"`
	DefaultOutput string        `yaml:"default_output"` // table, json, yaml
	Timeout       time.Duration `yaml:"timeout"`

	// Named relay endpoints, selected by CurrentProfile.
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
	CurrentProfile string             `yaml:"current_profile,omitempty"`
}

// Profile is a saved relay endpoint.
type Profile struct {
	Server string `yaml:"server"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "http://localhost:8080",
		DefaultOutput: "table",
		Timeout:       30 * time.Second,
		Profiles:      make(map[string]Profile),
	}
}

// Server returns the server to talk to. An explicit value wins, then the
// current profile, then DefaultServer.
func (c *CLIConfig) Server(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p, ok := c.Profiles[c.CurrentProfile]; ok && p.Server != "" {
		return p.Server
	}
	return c.DefaultServer
}
