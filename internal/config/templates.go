package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "succinct":
		return succinctTemplate, nil
	case "fragwrite":
		return fragwriteTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const succinctTemplate = `spool_dir = "spool"
json_dir = "spool/json"
archive_path = "spool/messages.sqlite"
metrics_file = ""
max_chat_bytes = 600
`

const fragwriteTemplate = `dir = "spool/outgoing"
team = "0000000000000000"
mtu = 140
start = 0
`
