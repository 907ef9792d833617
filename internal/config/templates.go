package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[analytics]
# Timezone used to bucket trades into days and weeks ("Local" = system zone)
timezone = "Local"
# Week-of-year numbering: "legacy" (Sunday start, Jan 1 is week 1) or "iso"
week_numbering = "legacy"
# A losing trade breaches its plan when the loss exceeds risk x tolerance
breach_tolerance = 1.05
# Days the last trading day may lag today for a day streak to stay current
streak_recency_days = 1

[display]
# Rows shown per ranking table
top_n = 10
# Currency symbol prefixed to amounts
currency_symbol = "$"
# Enable colored output
color_enabled = true
# Date format (Go reference layout)
date_format = "2006-01-02"

[store]
# Journal database; defaults to journal.db next to this file
# path = "~/.config/trade-journal/journal.db"
# Trades written per transaction during import
batch_size = 200

[logging]
# Log level: debug, info, warn, error
level = "info"
# Mirror logs to stderr
console = false
# Write a rotating log file
file = true
# max_size is in megabytes, max_age in days
max_size = 20
max_backups = 5
max_age = 30
`

func createTemplateConfig(configDir, name string) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}

// Template returns the default config file contents.
func Template() string {
	return configTemplate
}
