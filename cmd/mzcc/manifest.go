package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "mzcc.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Build   buildConfig   `toml:"build"`
	Options optionsConfig `toml:"options"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type buildConfig struct {
	Source   string `toml:"source"`
	Output   string `toml:"output"`
	Backend  string `toml:"backend"`
	Stack    int    `toml:"stack"`
	ExitCode int    `toml:"exit_code"`
}

type optionsConfig struct {
	Optimize bool     `toml:"optimize"`
	Warnings bool     `toml:"warnings"`
	Debug    bool     `toml:"debug"`
	Flags    []string `toml:"flags"`
}

// findManifest walks up from startDir looking for mzcc.toml.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, true, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("build", "source") || strings.TrimSpace(cfg.Build.Source) == "" {
		return nil, true, fmt.Errorf("%s: missing [build].source", path)
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// virtualName sanitizes a host file name into a guest store component:
// uppercase, underscores for anything outside [A-Z0-9_], one extension.
func virtualName(name string) string {
	base := strings.ToUpper(filepath.Base(name))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	clean := func(s string, max int) string {
		var b strings.Builder
		for _, r := range s {
			switch {
			case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
				b.WriteRune(r)
			case r == '-' || r == ' ':
				b.WriteByte('_')
			}
			if b.Len() >= max {
				break
			}
		}
		return b.String()
	}

	stem = clean(stem, 16)
	if stem == "" {
		stem = "MAIN"
	}
	if ext != "" {
		if e := clean(ext[1:], 3); e != "" {
			return stem + "." + e
		}
	}
	return stem
}
