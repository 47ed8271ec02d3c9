package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTOML is the config written by init
const DefaultTOML = `# WebKit content blocker configuration

[log]
level = "info"      # trace, debug, info, warn, error
format = "console"  # console or json

# HTTP client settings for remote rule sources
[http]
timeout = "30s"
retries = 3

# Rule sources, evaluated in order (first match wins across the concatenation).
# Entries are file paths or http(s) URLs:
#   .json         WebKit content blocker JSON
#   .yaml / .yml  the same records as YAML
#   .txt          uBlock/ABP filter list, imported on load
[rules]
sources = ["./rules/content_blockers.json"]
dedupe = false
strict_domains = true

# Decision service (serve command)
[server]
addr = "127.0.0.1:8787"
mode = "release"

# Filter lists available to the import command
# Set enabled = false to skip a list

[[lists]]
name = "easylist"
url = "https://easylist.to/easylist/easylist.txt"
enabled = true

[[lists]]
name = "easyprivacy"
url = "https://easylist.to/easylist/easyprivacy.txt"
enabled = true

[[lists]]
name = "peter-lowe"
url = "https://pgl.yoyo.org/adservers/serverlist.php?hostformat=adblockplus&showintro=0&mimetype=plaintext"
enabled = false
`

// WriteDefault writes DefaultTOML to path, refusing to overwrite an existing file
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(DefaultTOML), 0644)
}
