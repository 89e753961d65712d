//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	return []string{
		filepath.Join(os.Getenv("ProgramData"), "pi-reporter", "config.yaml"),
	}
}
