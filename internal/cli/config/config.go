// Package config loads rumagen project configuration from rumagen.yml,
// with environment variable overrides and defaults for everything optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the rumagen project configuration
type Config struct {
	// InputDir is the directory scanned for .ruma definition files.
	InputDir string `mapstructure:"input_dir" validate:"required"`
	// OutputDir receives the generated Go files.
	OutputDir string `mapstructure:"output_dir" validate:"required"`
	// Package is the Go package name of the generated files.
	Package string `mapstructure:"package" validate:"required,gopackage"`
}

var goPackageName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("gopackage", func(fl validator.FieldLevel) bool {
		return goPackageName.MatchString(fl.Field().String())
	})
	return v
}

// Load loads the configuration from rumagen.yml or rumagen.yaml in the
// current directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("input_dir", "api")
	v.SetDefault("output_dir", "gen")
	v.SetDefault("package", "api")

	v.SetConfigName("rumagen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RUMAGEN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file - run on defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range errs {
		switch {
		case fe.Field() == "Package" && fe.Tag() == "gopackage":
			return fmt.Errorf("package must be a valid Go package name, got: %s", cfg.Package)
		case fe.Tag() == "required":
			return fmt.Errorf("%s must not be empty", fe.StructField())
		}
	}
	return err
}

// DefinitionFiles returns the .ruma files under the configured input
// directory, sorted by path.
func (c *Config) DefinitionFiles() ([]string, error) {
	if _, err := os.Stat(c.InputDir); err != nil {
		return nil, fmt.Errorf("input directory %q not found - are you in a rumagen project?", c.InputDir)
	}

	files, err := filepath.Glob(filepath.Join(c.InputDir, "*.ruma"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.InputDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .ruma files found in %s", c.InputDir)
	}
	return files, nil
}

// InProject checks if the current directory is a rumagen project
func InProject() bool {
	if _, err := os.Stat("rumagen.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("rumagen.yaml"); err == nil {
		return true
	}
	return false
}
