// Package config loads the tool configuration with viper and reloads it on change.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// DefaultPath is where init writes the config file
const DefaultPath = "./configs/content_blocker.toml"

// EnvPrefix prefixes environment overrides, e.g. WCB_LOG_LEVEL
const EnvPrefix = "WCB"

// Manager owns a viper instance and the decoded configuration
type Manager struct {
	mu        sync.RWMutex
	viper     *viper.Viper
	config    *models.Config
	callbacks []func(*models.Config)
	watching  bool
	logger    zerolog.Logger
}

// NewManager creates a manager reading cfgFile, or searching ./configs and . when empty
func NewManager(cfgFile string) *Manager {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("content_blocker")
		v.SetConfigType("toml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &Manager{
		viper:  v,
		config: &models.Config{},
		logger: zerolog.Nop(),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.retries", 3)
	v.SetDefault("rules.sources", []string{})
	v.SetDefault("rules.dedupe", false)
	v.SetDefault("rules.strict_domains", true)
	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.mode", "release")
}

// SetLogger sets the logger used for reload messages
func (m *Manager) SetLogger(logger zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Load reads the config file. A missing file is not an error: defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}
	return m.decode()
}

// decode must be called with m.mu held for write
func (m *Manager) decode() error {
	var cfg models.Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error parsing config: %w", err)
	}
	m.config = &cfg
	return nil
}

// Config returns the current configuration. Callers must not modify it.
func (m *Manager) Config() *models.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigFile returns the file in use, empty when running on defaults
func (m *Manager) ConfigFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viper.ConfigFileUsed()
}

// OnConfigChange registers a callback function to be called when config changes.
func (m *Manager) OnConfigChange(callback func(*models.Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// Watch starts watching the config file for changes and reloads automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil // Already watching
	}
	if m.viper.ConfigFileUsed() == "" {
		return errors.New("no config file to watch")
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		m.handleChange(e)
	})
	m.viper.WatchConfig()

	m.watching = true
	return nil
}

func (m *Manager) handleChange(e fsnotify.Event) {
	m.mu.Lock()
	log := m.logger
	log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")

	if err := m.decode(); err != nil {
		log.Warn().Err(err).Msg("failed to reload config")
		m.mu.Unlock()
		return
	}
	m.notifyCallbacksLocked()
}

// notifyCallbacksLocked copies callbacks and config, releases lock, then notifies.
// Must be called with m.mu held for write.
func (m *Manager) notifyCallbacksLocked() {
	config := m.config
	callbacks := make([]func(*models.Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, callback := range callbacks {
		callback(config)
	}
}
