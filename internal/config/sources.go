package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/koustreak/schemats/internal/errs"
)

// Environment variable names.
const (
	EnvHost          = "SCHEMATS_HOST"
	EnvPort          = "SCHEMATS_PORT"
	EnvUser          = "SCHEMATS_USER"
	EnvPassword      = "SCHEMATS_PASSWORD"
	EnvDatabase      = "SCHEMATS_DB"
	EnvOut           = "SCHEMATS_OUT"
	EnvForceOptional = "SCHEMATS_FORCE_OPTIONAL"
	EnvLogLevel      = "SCHEMATS_LOG_LEVEL"
)

func (c *Config) applyEnv(lookup LookupEnv) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvHost, &c.Database.Host)
	str(EnvUser, &c.Database.User)
	str(EnvPassword, &c.Database.Password)
	str(EnvDatabase, &c.Database.Database)
	str(EnvOut, &c.Output.Path)
	str(EnvLogLevel, &c.Log.Level)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("%s=%q", EnvPort, v), err)
		}
		c.Database.Port = port
	}
	if v, ok := lookup(EnvForceOptional); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Wrap(errs.ErrKindConfig, fmt.Sprintf("%s=%q", EnvForceOptional, v), err)
		}
		c.Generate.ForceOptional = b
	}
	return nil
}

// flagValues holds parsed command-line flags. Only flags the user actually
// set are applied, so they override the file and environment but never
// reset them to flag defaults.
type flagValues struct {
	fs *flag.FlagSet

	configPath, envFile string

	host, user, password, db string
	port                     int

	out, namespace, naming string
	include, exclude       string
	skipViews              bool
	optional               bool
	concurrency            int

	logLevel, logFormat string
	addr                string
}

func parseFlags(name string, args []string) (*flagValues, error) {
	v := &flagValues{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := v.fs
	fs.SetOutput(io.Discard)

	fs.StringVar(&v.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&v.envFile, "env-file", ".env", "dotenv file with SCHEMATS_* variables")

	fs.StringVar(&v.host, "host", "", "MySQL host (default localhost)")
	fs.StringVar(&v.host, "h", "", "shorthand for -host")
	fs.IntVar(&v.port, "port", 0, "MySQL port (default 3306)")
	fs.IntVar(&v.port, "P", 0, "shorthand for -port")
	fs.StringVar(&v.user, "user", "", "MySQL user")
	fs.StringVar(&v.user, "u", "", "shorthand for -user")
	fs.StringVar(&v.password, "password", "", "MySQL password")
	fs.StringVar(&v.password, "p", "", "shorthand for -password")
	fs.StringVar(&v.db, "db", "", "database to introspect")
	fs.StringVar(&v.db, "d", "", "shorthand for -db")

	fs.StringVar(&v.out, "out", "", `output file, "-" for stdout (default <db>.d.ts)`)
	fs.StringVar(&v.out, "o", "", "shorthand for -out")
	fs.BoolVar(&v.optional, "optional", false, "mark every field optional")
	fs.StringVar(&v.namespace, "namespace", "", "namespace name (default derived from -db)")
	fs.StringVar(&v.naming, "naming", "", "interface naming: original or pascal")
	fs.StringVar(&v.include, "include", "", "comma-separated table globs to include")
	fs.StringVar(&v.exclude, "exclude", "", "comma-separated table globs to exclude")
	fs.BoolVar(&v.skipViews, "skip-views", false, "emit base tables only, not views")
	fs.IntVar(&v.concurrency, "concurrency", 0, "tables inspected and mapped in parallel")

	fs.StringVar(&v.logLevel, "log-level", "", "debug, info, warn, error or disabled")
	fs.StringVar(&v.logFormat, "log-format", "", "console or json")
	fs.StringVar(&v.addr, "addr", "", "listen address for serve")

	if err := fs.Parse(args); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "parse flags", err)
	}
	if fs.NArg() > 0 {
		return nil, errs.New(errs.ErrKindConfig, fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " ")))
	}
	return v, nil
}

func (v *flagValues) apply(c *Config) {
	v.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host", "h":
			c.Database.Host = v.host
		case "port", "P":
			c.Database.Port = v.port
		case "user", "u":
			c.Database.User = v.user
		case "password", "p":
			c.Database.Password = v.password
		case "db", "d":
			c.Database.Database = v.db
		case "out", "o":
			c.Output.Path = v.out
		case "optional":
			c.Generate.ForceOptional = v.optional
		case "namespace":
			c.Generate.Namespace = v.namespace
		case "naming":
			c.Generate.Naming = v.naming
		case "include":
			c.Tables.Include = splitList(v.include)
		case "exclude":
			c.Tables.Exclude = splitList(v.exclude)
		case "skip-views":
			c.Tables.SkipViews = v.skipViews
		case "concurrency":
			c.Generate.Concurrency = v.concurrency
		case "log-level":
			c.Log.Level = v.logLevel
		case "log-format":
			c.Log.Format = v.logFormat
		case "addr":
			c.Server.Addr = v.addr
		}
	})
}

// Usage writes the flag reference to w.
func Usage(w io.Writer, name string) {
	v, _ := parseFlags(name, nil)
	v.fs.SetOutput(w)
	fmt.Fprintf(w, "Usage: %s [serve] [flags]\n\n", name)
	v.fs.PrintDefaults()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
