package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "agent":
		return agentTemplate, nil
	default:
		return "", fmt.Errorf("config: unknown template kind: %s", kind)
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

const agentTemplate = `name = "probed"
listen_addr = ":9301"
admin_listen_addr = ":9302"
admin_token = ""
reuseport = false

[sequencer]
source = "sim"
image_path = ""
sim_revision = 1
sim_size = 64
`
