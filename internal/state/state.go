package state

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDirName = ".config"
	appDirName    = "arbor"
	stateFileName = "state.json"
)

// State represents the persisted panel state.
type State struct {
	// ShowHidden indicates whether dotfiles are shown
	ShowHidden bool `json:"show_hidden"`
	// ShowIgnored indicates whether gitignored entries are shown
	ShowIgnored bool `json:"show_ignored"`
	// GroupDirs indicates whether single-child directory chains collapse
	GroupDirs bool `json:"group_dirs"`
	// DirsFirst indicates the listing order policy
	DirsFirst bool `json:"dirs_first"`
	// LastRoot is the directory the panel was last rooted at
	LastRoot string `json:"last_root,omitempty"`
}

// DefaultState returns the default state for first run.
func DefaultState() State {
	return State{
		GroupDirs: true,
		DirsFirst: true,
	}
}

// configDir returns the path to the config directory (~/.config/arbor).
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, appDirName), nil
}

// statePath returns the global path to the state file.
func statePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// Load reads the persisted state.
// Returns default state if the file doesn't exist or can't be read.
func Load() State {
	path, err := statePath()
	if err != nil {
		return DefaultState()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultState()
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultState()
	}
	return s
}

// Save writes the persisted state.
func Save(s State) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := statePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
