package models

import "time"

// Config represents the main configuration
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Rules  RulesConfig  `mapstructure:"rules"`
	Server ServerConfig `mapstructure:"server"`
	Lists  []FilterList `mapstructure:"lists"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig contains HTTP client settings for remote rule sources
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// RulesConfig lists the rule sources and compile options
type RulesConfig struct {
	Sources       []string `mapstructure:"sources"`
	Dedupe        bool     `mapstructure:"dedupe"`
	StrictDomains bool     `mapstructure:"strict_domains"`
}

// ServerConfig contains decision service settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

// FilterList is an ABP/uBlock list that can be imported into rules
type FilterList struct {
	Name    string `mapstructure:"name"`
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// EnabledLists returns only enabled filter lists
func (c *Config) EnabledLists() []FilterList {
	var enabled []FilterList
	for _, l := range c.Lists {
		if l.Enabled {
			enabled = append(enabled, l)
		}
	}
	return enabled
}
