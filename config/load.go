package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations and falls back to
// Defaults when no file exists.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
// The path is empty when no config file was found.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg := Defaults()
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
		return cfg, "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	if cfg.REPL.History != "" {
		cfg.REPL.History = resolvePath(baseDir, cfg.REPL.History, getenv)
	}
	for i := range cfg.Watch.Extra {
		cfg.Watch.Extra[i] = resolvePath(baseDir, cfg.Watch.Extra[i], getenv)
	}
	if o := cfg.Logging.Output; o != "" && o != "stderr" && o != "stdout" {
		cfg.Logging.Output = resolvePath(baseDir, o, getenv)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolvePath expands a leading ~/ and makes relative paths relative to baseDir.
func resolvePath(baseDir, path string, getenv func(string) string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, rest)
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > QUETZAL_CONFIG env > ./quetzal.yaml > ~/.config/quetzal/quetzal.yaml
// An empty result with a nil error means no file was found.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("QUETZAL_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("QUETZAL_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("quetzal.yaml"); err == nil {
		return "quetzal.yaml", nil
	}

	if home := getenv("HOME"); home != "" {
		xdgPath := filepath.Join(home, ".config", "quetzal", "quetzal.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration for errors, reporting all of them at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Interpreter.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("invalid interprete.max_profundidad: %d (must be at least 1)", cfg.Interpreter.MaxDepth))
	}

	validColors := map[string]bool{"auto": true, "siempre": true, "nunca": true}
	if !validColors[cfg.Console.Color] {
		errs = append(errs, fmt.Sprintf("invalid consola.color: %s (must be auto, siempre, or nunca)", cfg.Console.Color))
	}

	if _, err := language.Parse(cfg.Console.Language); err != nil {
		errs = append(errs, fmt.Sprintf("invalid consola.idioma: %q", cfg.Console.Language))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid vigilar.espera: %s (must not be negative)", cfg.Watch.Debounce))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// LanguageTag returns the parsed consola.idioma, defaulting to Spanish.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Console.Language)
	if err != nil {
		return language.Spanish
	}
	return tag
}
