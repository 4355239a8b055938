// Package config assembles the schemats configuration from, in increasing
// precedence: built-in defaults, a YAML file, a .env file, the process
// environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/emit"
	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
	"github.com/koustreak/schemats/internal/logger"
)

// Config is the complete runtime configuration.
type Config struct {
	Database database.Config `yaml:"database"`
	Tables   Tables          `yaml:"tables"`
	Generate Generate        `yaml:"generate"`
	Output   Output          `yaml:"output"`
	Log      logger.Config   `yaml:"log"`
	Server   Server          `yaml:"server"`
}

// Tables selects which tables are emitted, using * globs.
type Tables struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	SkipViews bool     `yaml:"skip_views"`
}

// Generate controls the emitted declarations.
type Generate struct {
	ForceOptional bool   `yaml:"force_optional"`
	Namespace     string `yaml:"namespace"`
	Naming        string `yaml:"naming" validate:"omitempty,oneof=original pascal"`
	Concurrency   int    `yaml:"concurrency" validate:"min=0,max=64"`
}

// Output says where the document goes.
type Output struct {
	// Path is the destination file; "-" means stdout and empty means
	// <database>.d.ts in the working directory.
	Path   string           `yaml:"path"`
	Object filestore.Config `yaml:"object"`
}

// Server configures `schemats serve`.
type Server struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(),
		Generate: Generate{Naming: string(emit.NamingOriginal)},
		Log:      *logger.DefaultConfig(),
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Load parses args (without the program name) and merges every source.
func Load(name string, args []string, lookup LookupEnv) (*Config, error) {
	fv, err := parseFlags(name, args)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if fv.configPath != "" {
		if err := cfg.loadFile(fv.configPath); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotenv(fv.envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, err
	}

	fv.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("parse config file %s", path), err)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("read env file %s", path), err)
	}
	return env, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = describe(fe)
			}
			return errs.New(errs.ErrKindConfig, strings.Join(msgs, "; "))
		}
		return errs.Wrap(errs.ErrKindConfig, "invalid configuration", err)
	}
	if c.Generate.Namespace != "" && !emit.IsIdentifier(c.Generate.Namespace) {
		return errs.New(errs.ErrKindConfig,
			fmt.Sprintf("generate.namespace %q is not a valid identifier", c.Generate.Namespace))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.database.database"; drop the root type name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
