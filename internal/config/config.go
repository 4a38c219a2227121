// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied before the config file, flags and environment.
const (
	DefaultAddr        = "localhost:8080"
	DefaultOrigin      = "http://localhost:8080"
	DefaultStorageFile = "storage.json"
	DefaultLogLevel    = "Info"
	DefaultConfigFile  = "config.json"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the viewer host's listening address (ip:port).
	Addr string `json:"addr" yaml:"addr"`

	// Origin is the public scheme://host[:port] that share links point at.
	Origin string `json:"origin" yaml:"origin"`

	// DatabaseDSN selects the PostgreSQL store when set. The host must be
	// loopback or a unix socket because rows carry decryption keys.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// BadgerDir selects the embedded Badger store when set.
	BadgerDir string `json:"badger_dir" yaml:"badger_dir"`

	// StorageFile is the JSON file store used otherwise.
	StorageFile string `json:"storage_file" yaml:"storage_file"`

	// LogLevel is one of Debug, Info, Warn, Error.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// TLSCert and TLSKey enable HTTPS on the viewer host when both are set.
	TLSCert string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `json:"tls_key" yaml:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`
}

// TLSEnabled reports whether both certificate and key paths are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// envOverrides maps environment variables to the option they replace.
var envOverrides = []struct {
	name  string
	field func(*Options) *string
}{
	{"SERVER_ADDRESS", func(o *Options) *string { return &o.Addr }},
	{"PUBLIC_ORIGIN", func(o *Options) *string { return &o.Origin }},
	{"DATABASE_DSN", func(o *Options) *string { return &o.DatabaseDSN }},
	{"BADGER_DIR", func(o *Options) *string { return &o.BadgerDir }},
	{"STORAGE_FILE", func(o *Options) *string { return &o.StorageFile }},
	{"LOG_LEVEL", func(o *Options) *string { return &o.LogLevel }},
	{"TLS_CERT", func(o *Options) *string { return &o.TLSCert }},
	{"TLS_KEY", func(o *Options) *string { return &o.TLSKey }},
}

// ParseArgs registers the options on fs and parses args. Values resolve in
// order: defaults, config file, explicit flags, environment. A missing
// config file is ignored; an unreadable or malformed one is an error.
func ParseArgs(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs.StringVar(&options.Addr, "a", DefaultAddr, "run on ip:port server")
	fs.StringVar(&options.Origin, "o", DefaultOrigin, "public origin used in share links")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address (loopback or unix socket only)")
	fs.StringVar(&options.BadgerDir, "b", "", "badger data directory")
	fs.StringVar(&options.StorageFile, "f", DefaultStorageFile, "path to the JSON secret store")
	fs.StringVar(&options.LogLevel, "l", DefaultLogLevel, "log level")
	fs.StringVar(&options.TLSCert, "cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "key", "", "path to TLS private key")
	fs.StringVar(&options.Config, "config", DefaultConfigFile, "path to config file")
	fs.StringVar(&options.Config, "c", DefaultConfigFile, "path to config file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Remember what was passed explicitly so the file cannot override it.
	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = f.Value.String() })

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return nil, err
		}
	}

	for _, env := range envOverrides {
		if v := getenv(env.name); v != "" {
			*env.field(options) = v
		}
	}

	options.Origin = strings.TrimRight(options.Origin, "/")
	return options, nil
}

// loadFile decodes path into options, choosing YAML by extension.
func loadFile(path string, options *Options) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, options)
	default:
		err = json.Unmarshal(data, options)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// Parse parses the process's command-line flags and environment variables.
// It exits on invalid input.
func Parse() *Options {
	options, err := ParseArgs(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	return options
}
