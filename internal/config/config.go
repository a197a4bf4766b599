// Package config loads the rouvy CLI configuration from a YAML file, a .env
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	rouvy "github.com/jamesprial/go-rouvy-api-wrapper"
	pkgerrs "github.com/jamesprial/go-rouvy-api-wrapper/pkg/errors"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Environment variables that override the file.
const (
	EnvEmail    = "ROUVY_EMAIL"
	EnvPassword = "ROUVY_PASSWORD"
	EnvBaseURL  = "ROUVY_BASE_URL"
)

// File is the on-disk configuration of the CLI.
type File struct {
	Email     string `yaml:"email" validate:"required,email"`
	Password  string `yaml:"password" validate:"required"`
	BaseURL   string `yaml:"base_url,omitempty" validate:"omitempty,http_url"`
	UserAgent string `yaml:"user_agent,omitempty" validate:"omitempty,max=256"`
	TimeZone  string `yaml:"time_zone,omitempty" validate:"omitempty,timezone"`

	MinInterval    time.Duration `yaml:"min_interval,omitempty"`
	RetryLimit     int           `yaml:"retry_limit,omitempty" validate:"gte=-1,lte=20"`
	RetryDelay     time.Duration `yaml:"retry_delay,omitempty"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout,omitempty" validate:"gte=0"`

	RequestsPerMinute float64 `yaml:"requests_per_minute,omitempty" validate:"gte=0"`
	Burst             int     `yaml:"burst,omitempty" validate:"gte=0"`
}

// Options locate the configuration sources. Empty fields use the defaults.
type Options struct {
	// Path of the YAML file. Defaults to DefaultPath; a missing default
	// file is not an error.
	Path string
	// EnvFile is a .env file loaded into the environment before overrides
	// are applied. Defaults to ".env" in the working directory.
	EnvFile string
}

var validate *validator.Validate

func v() *validator.Validate {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(yamlName)
	}
	return validate
}

func yamlName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// DefaultPath returns the default location of the config file
// (e.g. ~/.config/rouvy/config.yaml on Linux).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "rouvy", DefaultConfigFile), nil
}

// Load reads the configuration, applies environment overrides and validates
// the result.
func Load(opts Options) (*File, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load %s: %w", envFile, err)
	}

	path, optional := opts.Path, false
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
		optional = true
	}

	cfg := &File{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *File) applyEnv() {
	if s, ok := os.LookupEnv(EnvEmail); ok && s != "" {
		f.Email = s
	}
	if s, ok := os.LookupEnv(EnvPassword); ok && s != "" {
		f.Password = s
	}
	if s, ok := os.LookupEnv(EnvBaseURL); ok && s != "" {
		f.BaseURL = s
	}
}

// Validate checks the struct tags. The first failing field is returned as a
// *errors.ConfigError named after its YAML key.
func (f *File) Validate() error {
	err := v().Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &pkgerrs.ConfigError{Message: err.Error()}
	}
	fe := verrs[0]
	msg := fmt.Sprintf("failed %q validation", fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
	}
	if fe.Tag() == "required" {
		msg = fmt.Sprintf("is required (set it in the config file or %s)", envFor(fe.Field()))
	}
	return &pkgerrs.ConfigError{Field: fe.Field(), Message: msg}
}

func envFor(field string) string {
	switch field {
	case "email":
		return EnvEmail
	case "password":
		return EnvPassword
	default:
		return "the environment"
	}
}

// Write stores the configuration at path with owner-only permissions.
func (f *File) Write(path string) error {
	if path == "" {
		return errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// ClientConfig converts the file into a client configuration.
func (f *File) ClientConfig(logger *slog.Logger) *rouvy.Config {
	return &rouvy.Config{
		Email:             f.Email,
		Password:          f.Password,
		BaseURL:           f.BaseURL,
		UserAgent:         f.UserAgent,
		TimeZone:          f.TimeZone,
		MinInterval:       f.MinInterval,
		RetryLimit:        f.RetryLimit,
		RetryDelay:        f.RetryDelay,
		AttemptTimeout:    f.AttemptTimeout,
		RequestsPerMinute: f.RequestsPerMinute,
		Burst:             f.Burst,
		Logger:            logger,
	}
}
