package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/pkg/database"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env             string `yaml:"env"               validate:"oneof=dev stage prod"`
	ShortCodeLength int    `yaml:"short_code_length" validate:"min=1,max=64"`
	MaxAttempts     int    `yaml:"max_attempts"      validate:"min=1"`
	StrictURLs      bool   `yaml:"strict_urls"`
	HTTPServer      `yaml:"http_server"`
	ShortLink       `yaml:"short_link"`
	Database        `yaml:"database"`
	Postgres        `yaml:"postgres"`
	Redis           `yaml:"redis"`
	Log             `yaml:"log"`
	CORS            `yaml:"cors"`
	Docs            `yaml:"docs"`
}

type HTTPServer struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"             validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"   validate:"min=1"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Host:           "127.0.0.1",
	Port:           3000,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
	MaxBodyBytes:   1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ShortLink controls how issued short links are rendered.
// BaseURL, when set, replaces Scheme and the request Host header.
type ShortLink struct {
	Scheme  string `yaml:"scheme"   validate:"oneof=http https"`
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

var defaultShortLink = ShortLink{
	Scheme: "https",
}

type Database struct {
	Driver          string        `yaml:"driver"             validate:"oneof=sqlite postgres memory"`
	Path            string        `yaml:"path"               validate:"required_if=Driver sqlite"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultDatabase = Database{
	Driver:          DriverSQLite,
	Path:            "./urls.db_3",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

// DriverName returns the database/sql driver registered for Driver.
func (d *Database) DriverName() string {
	if d.Driver == DriverPostgres {
		return database.DriverPostgres
	}
	return database.DriverSQLite
}

type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
	SSLMode  string `yaml:"sslmode"`
}

var defaultPostgres = Postgres{
	Host:    "localhost",
	Port:    5432,
	SSLMode: "disable",
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Redis configures the optional lookup cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type Log struct {
	Level      string `yaml:"level"        validate:"oneof=debug info warn error"`
	JSON       bool   `yaml:"json"`
	Concise    bool   `yaml:"concise"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var defaultLog = Log{
	Level:      "info",
	Concise:    true,
	MaxSizeMB:  100,
	MaxAgeDays: 7,
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Docs struct {
	Enabled  bool   `yaml:"enabled"`
	SpecPath string `yaml:"spec_path"`
}

var defaultDocs = Docs{
	SpecPath: "./docs/swagger.yml",
}

// DSN returns the data source name for the configured SQL driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverPostgres {
		return c.Postgres.DSN()
	}
	return database.SQLiteDSN(c.Database.Path)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// Load reads the YAML file at path on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	return &cfg, nil
}

// Overrides holds values given on the command line. Zero values are ignored.
type Overrides struct {
	Port     int
	Database string
}

// Apply replaces file or default values with the non-zero overrides.
func (c *Config) Apply(o Overrides) {
	if o.Port != 0 {
		c.HTTPServer.Port = o.Port
	}
	if o.Database != "" {
		c.Database.Path = o.Database
	}
}

func (c *Config) Validate() error {
	const op = "config.Config.Validate"

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%s: invalid configuration: %w", op, err)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 4
	cfg.MaxAttempts = 5
	cfg.HTTPServer = defaultHTTPServer
	cfg.ShortLink = defaultShortLink
	cfg.Database = defaultDatabase
	cfg.Postgres = defaultPostgres
	cfg.Log = defaultLog
	cfg.Docs = defaultDocs
}
