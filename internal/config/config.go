// Package config loads the hub's YAML configuration, falling back to sane
// defaults for anything a config file omits or when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Hub holds every tunable the reactor, listeners, and admin surface need.
type Hub struct {
	BindAddress        string        `yaml:"bind_address"`
	Port               int           `yaml:"port"`
	AdvertisedAddress  string        `yaml:"advertised_address"`
	AdminBindAddress   string        `yaml:"admin_bind_address"`
	UploadRoot         string        `yaml:"upload_root"`
	StatePath          string        `yaml:"state_path"`
	UsersPath          string        `yaml:"users_path"`
	PluginsDir         string        `yaml:"plugins_dir"`
	MaxFrameSize       uint32        `yaml:"max_frame_size"`
	ReadyCheckTimeout  time.Duration `yaml:"ready_check_timeout"`
	DownloadChunkSize  int           `yaml:"download_chunk_size"`
	FrameRateLimit     float64       `yaml:"frame_rate_limit"`
	FrameRateBurst     int           `yaml:"frame_rate_burst"`
	LogLevel           string        `yaml:"log_level"`
}

// Default returns the hub's built-in configuration, used whenever no config
// file is supplied and for every field a loaded file omits. A field the file
// sets explicitly, even to a zero value, keeps that value.
func Default() *Hub {
	return &Hub{
		BindAddress:       "0.0.0.0",
		Port:              8900,
		AdvertisedAddress: "127.0.0.1",
		AdminBindAddress:  "127.0.0.1:8901",
		UploadRoot:        "./data/games",
		StatePath:         "./data/state.json",
		UsersPath:         "./data/users.json",
		PluginsDir:        "./data/plugins",
		MaxFrameSize:      16 << 20,
		ReadyCheckTimeout: 30 * time.Second,
		DownloadChunkSize: 64 << 10,
		FrameRateLimit:    50,
		FrameRateBurst:    100,
		LogLevel:          "info",
	}
}

// Load reads a YAML config file at path and overlays it onto Default. A
// missing file is not an error; the caller gets defaults back.
func Load(path string) (*Hub, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Addr returns the listen address for the game protocol socket.
func (h *Hub) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindAddress, h.Port)
}
