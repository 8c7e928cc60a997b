package config

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Prefix namespaces environment variables, e.g. SHOPPING_SEED.
const Prefix = "SHOPPING"

// Config holds all settings for a run. Every field can be set by flag
// (--log-level) or environment (SHOPPING_LOG_LEVEL); a .env file in the
// working directory is read first.
type Config struct {
	Seed      int    `conf:"default:20,help:number of placeholder items the list starts with"`
	CharLimit int    `conf:"default:200,help:maximum length of an item's text"`
	Group     bool   `conf:"default:false,help:group ls output by pending/done"`
	JSON      bool   `conf:"default:false,help:print ls output as JSON"`
	Theme     string `conf:"default:classic,enum:classic|neon|mono,help:colour theme for printed output"`

	Log struct {
		Level string `conf:"default:info,enum:debug|info|warn|error"`
		// The TUI owns the terminal, so logs go to a file. Empty discards them.
		File string `conf:"default:shopping.log"`
	}

	// Subcommand and its arguments.
	Args conf.Args
}

// Load parses configuration from .env, the environment and os.Args.
// When --help is requested it returns a nil Config and the usage text.
func Load() (*Config, string, error) {
	var cfg Config
	_ = godotenv.Load()
	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, nil
		}
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, "", nil
}

// Validate checks the values conf cannot express as tags.
func (c *Config) Validate() error {
	var errs []error
	if c.Seed < 0 {
		errs = append(errs, fmt.Errorf("seed must not be negative (got %d)", c.Seed))
	}
	if c.CharLimit < 1 {
		errs = append(errs, fmt.Errorf("char-limit must be positive (got %d)", c.CharLimit))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// String renders the non-secret settings for logging.
func (c *Config) String() string {
	s, err := conf.String(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return s
}
