package models

import "time"

// Well-known preference keys, mirroring what the site stores per origin.
const (
	PrefTheme = "theme"
)

// Theme values.
const (
	ThemeDark  = "dark-mode"
	ThemeLight = "light"
)

// Preference is a single origin-scoped key-value setting.
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchEntry is one remembered search query.
type SearchEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}
