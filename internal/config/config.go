package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// AppName names the XDG subdirectories used by wtfcopy
	AppName = "wtfcopy"
	// EnvInstallDir overrides the configured installation directory
	EnvInstallDir = "WTFCOPY_INSTALL_DIR"
	// DefaultMaxSnapshots is the number of snapshots kept per character
	DefaultMaxSnapshots = 3
)

var ErrInvalidConfig = errors.New("invalid config file")

type Config struct {
	InstallDir   string `json:"install_dir"`
	Snapshots    bool   `json:"snapshots"`
	MaxSnapshots int    `json:"max_snapshots"`

	// path is where the config was read from and where Save writes
	path string
}

func DefaultConfig() *Config {
	return &Config{
		InstallDir:   DefaultInstallDir(),
		MaxSnapshots: DefaultMaxSnapshots,
		path:         DefaultPath(),
	}
}

// DefaultInstallDir returns the usual game location for the running OS
func DefaultInstallDir() string {
	home, _ := os.UserHomeDir()
	return defaultInstallDir(runtime.GOOS, home)
}

func defaultInstallDir(goos, home string) string {
	switch goos {
	case "windows":
		return `C:\Program Files (x86)\World of Warcraft`
	case "darwin":
		return "/Applications/World of Warcraft"
	default:
		return filepath.Join(home, "Games", "battlenet", "drive_c", "Program Files (x86)", "World of Warcraft")
	}
}

// Load reads the config file. An explicit path is the only candidate when
// given; otherwise the XDG location is used. When the file does not exist
// the defaults are returned, bound to that path so a later Save creates it.
func Load(explicit string) (*Config, error) {
	paths := getConfigPaths(explicit)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		if cfg.MaxSnapshots < 1 {
			cfg.MaxSnapshots = DefaultMaxSnapshots
		}
		cfg.InstallDir = expandHome(cfg.InstallDir)
		cfg.path = path
		return cfg, nil
	}

	cfg := DefaultConfig()
	cfg.path = paths[0]
	return cfg, nil
}

// Save writes the config as indented JSON, creating its directory
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the file this config is bound to
func (c *Config) Path() string {
	return c.path
}

// ResolveInstallDir picks the installation directory: an explicit flag
// value wins, then the environment, then the config file.
func (c *Config) ResolveInstallDir(flagValue string) string {
	if flagValue != "" {
		return expandHome(flagValue)
	}
	if env := os.Getenv(EnvInstallDir); env != "" {
		return expandHome(env)
	}
	if c.InstallDir != "" {
		return c.InstallDir
	}
	return DefaultInstallDir()
}

func getConfigPaths(explicit string) []string {
	if explicit != "" {
		return []string{expandHome(explicit)}
	}
	return []string{DefaultPath()}
}

// DefaultPath is $XDG_CONFIG_HOME/wtfcopy/config.json
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), AppName, "config.json")
}

// DataDir is $XDG_DATA_HOME/wtfcopy
func DataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), AppName)
}

// SnapshotDir is where destination snapshots are stored
func SnapshotDir() string {
	return filepath.Join(DataDir(), "snapshots")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
