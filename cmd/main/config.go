package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "./markovgen.json"
	envPrefix         = "MARKOVGEN_"

	modeWords = "words"
	modeText  = "text"
)

// Config holds the settings of a markovgen run. Values are layered as
// defaults, then the config file, then MARKOVGEN_* environment variables,
// then command-line flags.
type Config struct {
	LogLevel     string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	InputPath    string `json:"input_path" yaml:"input_path" env:"INPUT_PATH"`
	DatabasePath string `json:"database_path" yaml:"database_path" env:"DATABASE_PATH"`
	CorpusQuery  string `json:"corpus_query" yaml:"corpus_query" env:"CORPUS_QUERY"`
	OutputPath   string `json:"output_path" yaml:"output_path" env:"OUTPUT_PATH"`
	DumpPath     string `json:"dump_path" yaml:"dump_path" env:"DUMP_PATH"`

	Mode      string `json:"mode" yaml:"mode" env:"MODE"`
	Degree    int    `json:"degree" yaml:"degree" env:"DEGREE"`
	Count     int    `json:"count" yaml:"count" env:"COUNT"`
	MinLength int    `json:"min_length" yaml:"min_length" env:"MIN_LENGTH"`
	MaxLength int    `json:"max_length" yaml:"max_length" env:"MAX_LENGTH"`
	MaxTries  int    `json:"max_tries" yaml:"max_tries" env:"MAX_TRIES"`
	MaxSteps  int    `json:"max_steps" yaml:"max_steps" env:"MAX_STEPS"`
	Seed      uint64 `json:"seed" yaml:"seed" env:"SEED"`
	Reseed    bool   `json:"reseed" yaml:"reseed" env:"RESEED"`

	LowerCase    bool   `json:"lower_case" yaml:"lower_case" env:"LOWER_CASE"`
	CommentChar  string `json:"comment_char" yaml:"comment_char" env:"COMMENT_CHAR"`
	LineFeed     string `json:"line_feed" yaml:"line_feed" env:"LINE_FEED"`
	PrintAsList  bool   `json:"print_as_list" yaml:"print_as_list" env:"PRINT_AS_LIST"`
	PrintAsNames bool   `json:"print_as_names" yaml:"print_as_names" env:"PRINT_AS_NAMES"`
}

// DefaultConfig creates a configuration with default values. It names no
// corpus source, one must be given in the file, the environment or a flag.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		CorpusQuery: "SELECT text FROM corpus",
		OutputPath:  "-",
		Mode:        modeWords,
		Degree:      3,
		Count:       20,
		MinLength:   3,
		MaxLength:   12,
		MaxTries:    200,
		LowerCase:   true,
		CommentChar: "#",
		LineFeed:    "unix",
		PrintAsList: true,
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig reads the configuration from a JSON file at the given path, or a
// YAML file when the extension is .yaml or .yml. If the file doesn't exist,
// it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			if isYAML(path) {
				data, err = yaml.Marshal(config)
			} else {
				data, err = json.MarshalIndent(config, "", "  ")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The run can still go ahead with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// ParseEnv applies MARKOVGEN_* environment overrides to cfg. A corpus
// source set in the environment replaces the one from the file.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	_, input := os.LookupEnv(envPrefix + "INPUT_PATH")
	_, database := os.LookupEnv(envPrefix + "DATABASE_PATH")
	cfg.selectSource(input, database)
	return nil
}

// selectSource keeps only the corpus source that was overridden when exactly
// one of them was. Overriding both leaves the conflict to Validate.
func (c *Config) selectSource(input, database bool) {
	switch {
	case input && !database:
		c.DatabasePath = ""
	case database && !input:
		c.InputPath = ""
	}
}

// bindFlags registers one flag per Config field, writing into cfg.
func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Corpus text file")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "SQLite database to read the corpus from")
	fs.StringVar(&cfg.CorpusQuery, "query", cfg.CorpusQuery, "Query whose first column holds the corpus rows")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Output file, - for stdout")
	fs.StringVar(&cfg.DumpPath, "dump", cfg.DumpPath, "File to write the transition table to")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Generation mode: words or text")
	fs.IntVar(&cfg.Degree, "degree", cfg.Degree, "Number of tokens in a context")
	fs.IntVar(&cfg.Count, "count", cfg.Count, "Number of words or sentences to generate")
	fs.IntVar(&cfg.MinLength, "min", cfg.MinLength, "Minimum length of a generated unit")
	fs.IntVar(&cfg.MaxLength, "max", cfg.MaxLength, "Maximum length of a generated unit")
	fs.IntVar(&cfg.MaxTries, "tries", cfg.MaxTries, "Attempts per unit before giving up")
	fs.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Upper bound on the draws of a single walk, 0 for the default")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for a random one")
	fs.BoolVar(&cfg.Reseed, "reseed", cfg.Reseed, "Restart from a random context instead of failing on an unknown one")
	fs.BoolVar(&cfg.LowerCase, "lower", cfg.LowerCase, "Lower-case the corpus")
	fs.StringVar(&cfg.CommentChar, "comment", cfg.CommentChar, "Character starting a comment line in word mode, empty to disable")
	fs.StringVar(&cfg.LineFeed, "line-feed", cfg.LineFeed, "Output line feed style: unix, windows or mac")
	fs.BoolVar(&cfg.PrintAsList, "list", cfg.PrintAsList, "Print one word per line instead of prose")
	fs.BoolVar(&cfg.PrintAsNames, "names", cfg.PrintAsNames, "Capitalize generated words")
}

// ParseConfig parses the config file, the environment and args into a
// Config. The config file is named by the -config flag.
func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	configPath := fs.String("config", defaultConfigPath, "Path to the JSON or YAML configuration file")
	bindFlags(fs, DefaultConfig())
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	if err = ParseEnv(cfg); err != nil {
		return nil, err
	}

	// Flags given on the command line win over the file and the environment.
	overrides := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	bindFlags(overrides, cfg)
	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		given[f.Name] = true
		if f.Name == "config" || err != nil {
			return
		}
		err = overrides.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
	}
	cfg.selectSource(given["in"], given["db"])
	if fs.NArg() > 0 && cfg.InputPath == "" && cfg.DatabasePath == "" {
		cfg.InputPath = fs.Arg(0)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Mode != modeWords && c.Mode != modeText {
		errs = append(errs, fmt.Errorf("mode %q is not %q or %q", c.Mode, modeWords, modeText))
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"degree", c.Degree},
		{"count", c.Count},
		{"min_length", c.MinLength},
		{"max_length", c.MaxLength},
		{"max_tries", c.MaxTries},
	} {
		if field.value < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", field.name, field.value))
		}
	}
	if c.MinLength > c.MaxLength {
		errs = append(errs, fmt.Errorf("min_length %d exceeds max_length %d", c.MinLength, c.MaxLength))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps))
	}
	switch {
	case c.InputPath == "" && c.DatabasePath == "":
		errs = append(errs, errors.New("no corpus source: set input_path or database_path"))
	case c.InputPath != "" && c.DatabasePath != "":
		errs = append(errs, errors.New("input_path and database_path are mutually exclusive"))
	}
	if c.DatabasePath != "" && strings.TrimSpace(c.CorpusQuery) == "" {
		errs = append(errs, errors.New("database_path needs a corpus_query"))
	}
	if utf8.RuneCountInString(c.CommentChar) > 1 {
		errs = append(errs, fmt.Errorf("comment_char %q must be a single character", c.CommentChar))
	}
	if _, ok := lineFeeds[c.LineFeed]; !ok {
		errs = append(errs, fmt.Errorf("line_feed %q is not unix, windows or mac", c.LineFeed))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var lineFeeds = map[string]string{
	"unix":    "\n",
	"windows": "\r\n",
	"mac":     "\r",
}

// LineFeedOut returns the line break written to the output.
func (c *Config) LineFeedOut() string {
	return lineFeeds[c.LineFeed]
}

// CommentRune returns the comment character, or 0 when comments are off.
func (c *Config) CommentRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CommentChar)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
