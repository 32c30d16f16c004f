// Package settings provides persisted user settings for VPN Access.
// It handles loading, saving, and validating the process-wide selection
// markers: the active profile, the selected server location, and the
// client's country context.
package settings

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-access/common"
)

// Settings represents the persisted user settings.
// All values are stored in a YAML file in the application directory.
type Settings struct {
	// ProfileID is the currently selected profile; empty means the store's
	// default profile is used.
	ProfileID string `yaml:"profile_id,omitempty"`
	// ServerLocation is the selected scope within the active profile,
	// e.g. "us/*" or "us/california"; empty means the default scope.
	ServerLocation string `yaml:"server_location,omitempty"`
	// ClientCountry is the client's current two-letter country context.
	ClientCountry string `yaml:"client_country,omitempty"`

	path string
}

// Default returns the default settings.
func Default() *Settings {
	return &Settings{}
}

// Load loads the settings from the given directory. A missing file yields
// defaults; the defaults are written back so the file exists afterwards.
func Load(dir string) (*Settings, error) {
	path := filepath.Join(dir, common.SettingsFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s := Default()
		s.path = path
		if err := s.Save(); err != nil {
			return s, err
		}
		return s, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, common.WrapError(common.ErrSettingsLoad, err.Error())
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var s Settings
	if err := decoder.Decode(&s); err != nil {
		return nil, common.WrapError(common.ErrSettingsLoad, err.Error())
	}
	s.path = path
	s.validate()
	return &s, nil
}

// validate normalizes settings values in place.
func (s *Settings) validate() {
	s.ClientCountry = strings.ToLower(strings.TrimSpace(s.ClientCountry))
	s.ServerLocation = strings.ToLower(strings.TrimSpace(s.ServerLocation))
}

// Save persists the settings to their file.
func (s *Settings) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return common.WrapError(common.ErrSettingsSave, err.Error())
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return common.WrapError(common.ErrSettingsSave, err.Error())
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return common.WrapError(common.ErrSettingsSave, err.Error())
	}
	return nil
}
