package config

import "time"

// Config represents the complete Quetzal configuration
type Config struct {
	BaseDir     string            `yaml:"-"` // Directory containing config file, for resolving relative paths
	Interpreter InterpreterConfig `yaml:"interprete"`
	Console     ConsoleConfig     `yaml:"consola"`
	Logging     LoggingConfig     `yaml:"logging"`
	REPL        REPLConfig        `yaml:"repl"`
	Watch       WatchConfig       `yaml:"vigilar"`
}

// InterpreterConfig holds evaluator limits and tracing
type InterpreterConfig struct {
	MaxDepth int  `yaml:"max_profundidad"` // Maximum nested function calls (default: 512)
	Trace    bool `yaml:"traza"`           // Log every statement at debug level
}

// ConsoleConfig holds settings for program output
type ConsoleConfig struct {
	Color    string `yaml:"color"`  // "auto", "siempre" or "nunca" (default: "auto")
	Language string `yaml:"idioma"` // BCP-47 tag used for case mapping (default: "es")
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// REPLConfig holds interactive mode settings
type REPLConfig struct {
	History string `yaml:"historial"` // History file; empty disables persistence
}

// WatchConfig holds settings for --vigilar
type WatchConfig struct {
	Debounce time.Duration `yaml:"espera"` // Quiet period before re-running (default: 100ms)
	Extra    StringOrSlice `yaml:"rutas"`  // Additional files whose changes trigger a re-run
}

// StringOrSlice supports YAML fields that can be either a string or a slice of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string
func (s StringOrSlice) Contains(str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Interpreter: InterpreterConfig{
			MaxDepth: 512,
		},
		Console: ConsoleConfig{
			Color:    "auto",
			Language: "es",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
	}
}
