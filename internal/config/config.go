package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone the timetable's wall-clock times are
	// interpreted in (e.g. "Europe/Vienna").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RemoteMarkers lists tokens that mark a session as remote/online when
	// they appear (case-insensitively) in the location field.
	RemoteMarkers []string `yaml:"remote_markers" json:"remote_markers"`

	// RemoteLocation is the LOCATION value emitted for remote sessions.
	RemoteLocation string `yaml:"remote_location" json:"remote_location"`

	// GroupSeparator is the class-group family separator. Empty means the
	// digit-to-letter transition inside a label (so target "25" covers
	// "25A" and "25B"); a non-empty value requires the stored label to
	// continue with exactly that string after the target prefix.
	GroupSeparator string `yaml:"group_separator" json:"group_separator"`

	// CalendarName is used for X-WR-CALNAME.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// ProdID is the iCalendar PRODID property value.
	ProdID string `yaml:"prodid" json:"prodid"`

	// Refresh is a cron-style schedule string (e.g. "*/30 * * * *") used
	// by watch mode to re-run the conversion.
	Refresh string `yaml:"refresh" json:"refresh"`
}

// DefaultConfig returns an in-memory default configuration. The defaults
// match the timetable layout this tool was built against: an Austrian
// university schedule with Teams-based remote sessions.
func DefaultConfig() *Config {
	return &Config{
		Timezone:       "Europe/Vienna",
		RemoteMarkers:  []string{"teams", "online", "remote"},
		RemoteLocation: "Microsoft Teams (Online)",
		GroupSeparator: "",
		CalendarName:   "University Timetable",
		ProdID:         "-//ttcal//Timetable Parser//EN",
		Refresh:        "*/30 * * * *",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Vienna"
	}
	if c.RemoteMarkers == nil {
		c.RemoteMarkers = []string{"teams", "online", "remote"}
	}
	if c.RemoteLocation == "" {
		c.RemoteLocation = "Microsoft Teams (Online)"
	}
	if c.CalendarName == "" {
		c.CalendarName = "University Timetable"
	}
	if c.ProdID == "" {
		c.ProdID = "-//ttcal//Timetable Parser//EN"
	}
	if c.Refresh == "" {
		c.Refresh = "*/30 * * * *"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If path is empty, the in-memory defaults are returned without
//     touching the filesystem.
//   - If the file does not exist, a default config is written there with
//     0600 perms and returned.
//   - Otherwise the YAML is read, unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".ttcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
