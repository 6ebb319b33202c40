package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/and161185/todo-keeper/internal/limiter"
)

// Storage backends.
const (
	storeMongo    = "mongo"
	storePostgres = "postgres"
)

type config struct {
	Addr     string
	Store    string
	MongoURL string
	MongoDB  string
	DSN      string

	CookieKey    string
	CookieSecure bool
	CORSOrigin   string

	LoginMaxFails int
	LoginWindow   time.Duration
	LoginBlock    time.Duration

	Dev bool
}

// envFlags maps flag names to the environment variables that back them.
// A flag given on the command line wins over its variable.
var envFlags = map[string]string{
	"addr":            "TODO_ADDR",
	"store":           "TODO_STORE",
	"mongo-url":       "MONGO_URL",
	"mongo-db":        "TODO_MONGO_DB",
	"dsn":             "DATABASE_DSN",
	"cookie-key":      "TODO_COOKIE_KEY",
	"cookie-secure":   "TODO_COOKIE_SECURE",
	"cors-origin":     "TODO_CORS_ORIGIN",
	"login-max-fails": "TODO_LOGIN_MAX_FAILS",
	"login-window":    "TODO_LOGIN_WINDOW",
	"login-block":     "TODO_LOGIN_BLOCK",
	"dev":             "TODO_DEV",
}

// storeFlags registers the flags needed to reach storage.
func (c *config) storeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Store, "store", storeMongo, "storage backend: mongo or postgres")
	fs.StringVar(&c.MongoURL, "mongo-url", "mongodb://localhost:27017", "MongoDB connection string")
	fs.StringVar(&c.MongoDB, "mongo-db", "TODO", "MongoDB database name")
	fs.StringVar(&c.DSN, "dsn", "", "PostgreSQL DSN")
	fs.BoolVar(&c.Dev, "dev", false, "development logging and gin debug mode")
}

// serveFlags registers the remaining flags of the serve command.
func (c *config) serveFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", ":8080", "listen address")
	fs.StringVar(&c.CookieKey, "cookie-key", "", "HS256 key for signing session cookies (empty: raw tokens)")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", false, "mark the session cookie Secure")
	fs.StringVar(&c.CORSOrigin, "cors-origin", "http://localhost", "origin allowed to call /api from a browser")
	fs.IntVar(&c.LoginMaxFails, "login-max-fails", 5, "failed logins before lockout (0 disables)")
	fs.DurationVar(&c.LoginWindow, "login-window", 15*time.Minute, "window in which failed logins are counted")
	fs.DurationVar(&c.LoginBlock, "login-block", 15*time.Minute, "lockout duration")
}

// applyEnv fills every flag not set on the command line from its environment variable.
func applyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	for name, key := range envFlags {
		f := fs.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func applyOSEnv(fs *pflag.FlagSet) error { return applyEnv(fs, os.LookupEnv) }

func (c *config) validate() error {
	switch c.Store {
	case storeMongo:
		if c.MongoURL == "" {
			return errors.New("mongo store requires --mongo-url")
		}
	case storePostgres:
		if c.DSN == "" {
			return errors.New("postgres store requires --dsn")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.CORSOrigin != "" && !strings.HasPrefix(c.CORSOrigin, "http://") && !strings.HasPrefix(c.CORSOrigin, "https://") {
		return fmt.Errorf("--cors-origin %q must start with http:// or https://", c.CORSOrigin)
	}
	if c.LoginMaxFails < 0 {
		return errors.New("--login-max-fails must not be negative")
	}
	if c.LoginMaxFails > 0 && (c.LoginWindow <= 0 || c.LoginBlock <= 0) {
		return errors.New("--login-window and --login-block must be positive")
	}
	return nil
}

func (c *config) policy() limiter.Policy {
	return limiter.Policy{Window: c.LoginWindow, MaxFails: c.LoginMaxFails, BlockFor: c.LoginBlock}
}
