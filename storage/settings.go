package storage

import (
	"encoding/json"
	"fmt"
	"os"
)

// settingsFile is the name of the settings file inside the data directory.
const settingsFile = "settings.json"

// Settings holds the persisted editor preferences.
type Settings struct {
	ScriptsDir   string `json:"scriptsDir"`
	ConsoleAddr  string `json:"consoleAddr"`
	WindowWidth  int    `json:"windowWidth"`
	WindowHeight int    `json:"windowHeight"`
}

// DefaultSettings returns the settings used on a fresh install.
func DefaultSettings() Settings {
	return Settings{
		ScriptsDir:   "scripts",
		ConsoleAddr:  "127.0.0.1:42071",
		WindowWidth:  1280,
		WindowHeight: 800,
	}
}

// LoadSettings reads the settings file from the data directory. A missing
// file yields the defaults along with os.ErrNotExist so the caller can
// write an initial file; any other failure also yields the defaults.
func LoadSettings() (Settings, error) {
	s := DefaultSettings()
	data, err := ReadDataFile(settingsFile)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("decode settings: %w", err)
	}
	// Guard against hand-edited nonsense.
	if s.WindowWidth <= 0 || s.WindowHeight <= 0 {
		s.WindowWidth = DefaultSettings().WindowWidth
		s.WindowHeight = DefaultSettings().WindowHeight
	}
	if s.ScriptsDir == "" {
		s.ScriptsDir = DefaultSettings().ScriptsDir
	}
	if s.ConsoleAddr == "" {
		s.ConsoleAddr = DefaultSettings().ConsoleAddr
	}
	return s, nil
}

// SaveSettings writes the settings file to the data directory.
func SaveSettings(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return WriteDataFile(settingsFile, data, 0o644)
}

// EnsureSettings loads the settings, writing the defaults first when no
// settings file exists yet.
func EnsureSettings() (Settings, error) {
	s, err := LoadSettings()
	if os.IsNotExist(err) {
		return s, SaveSettings(s)
	}
	return s, err
}
