package storage

import "errors"

const settingsKey = "irc4osu-settings"

// Settings is the persisted client settings record.
type Settings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// DefaultSettings returns the settings used before the user saved any.
func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true}
}

// LoadSettings returns the persisted settings, or the defaults when no
// record exists.
func LoadSettings(kv *Store) (Settings, error) {
	var s Settings
	err := kv.Get(settingsKey, &s)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SaveSettings persists s, overwriting any prior record.
func SaveSettings(kv *Store, s Settings) error {
	return kv.Set(settingsKey, s)
}
