package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.bx/config.toml.
type Config struct {
	DefaultProfile string        `toml:"default_profile"`
	Backend        BackendConfig `toml:"backend"`
	Voice          VoiceConfig   `toml:"voice"`
	Browse         BrowseConfig  `toml:"browse"`
}

// BackendConfig describes the hosted marketplace entity service.
type BackendConfig struct {
	BaseURL  string `toml:"base_url"`
	AppID    string `toml:"app_id"`
	APIToken string `toml:"api_token"`
	// ShareBaseURL is the public web front end used for shareable listing
	// links (QR codes).
	ShareBaseURL string `toml:"share_base_url"`
}

// VoiceConfig controls the voice assistant and its capture engine.
type VoiceConfig struct {
	// RecorderCommand is the external command used to capture microphone
	// audio as 16kHz mono s16le PCM on stdout. Empty disables voice search.
	RecorderCommand []string `toml:"recorder_command"`
	ModelPath       string   `toml:"model_path"`
	Language        string   `toml:"language"`
	// ActivationDelayMs is the pause between activation and capture start,
	// so the activation keystroke itself is not picked up.
	ActivationDelayMs int `toml:"activation_delay_ms"`
	// ListenTimeoutSec bounds a single capture session. 0 disables the bound.
	ListenTimeoutSec int `toml:"listen_timeout_sec"`
}

// BrowseConfig controls browse page defaults.
type BrowseConfig struct {
	// PriceCeiling is the price slider maximum; at the ceiling the upper
	// bound is treated as open-ended.
	PriceCeiling float64 `toml:"price_ceiling"`
	// RefreshIntervalSec is the background listing refresh cadence.
	RefreshIntervalSec int `toml:"refresh_interval_sec"`
}

// Default returns a config with all defaults applied.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:      "https://app.base44.com/api",
			ShareBaseURL: "https://boilerexchange.base44.app",
		},
		Voice: VoiceConfig{
			RecorderCommand:   []string{"sox", "-d", "-t", "raw", "-r", "16000", "-b", "16", "-c", "1", "-e", "signed-integer", "-"},
			Language:          "en",
			ActivationDelayMs: 500,
			ListenTimeoutSec:  30,
		},
		Browse: BrowseConfig{
			PriceCeiling:       1000,
			RefreshIntervalSec: 60,
		},
	}
}

// Load reads config from the given path. Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads config from the given path, falling back to defaults
// when the file does not exist or cannot be parsed.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
