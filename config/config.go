// Package config loads regen settings from defaults, TOML files and REGEN_
// environment variables.
package config

import (
	"fmt"

	"github.com/teranos/regen/export"
)

// Config represents the regen configuration
type Config struct {
	Output  OutputConfig  `mapstructure:"output" toml:"output" yaml:"output" json:"output"`
	Catalog CatalogConfig `mapstructure:"catalog" toml:"catalog" yaml:"catalog" json:"catalog"`
	Log     LogConfig     `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
	Report  ReportConfig  `mapstructure:"report" toml:"report" yaml:"report" json:"report"`
}

// OutputConfig configures where and how modules are written
type OutputConfig struct {
	// Flat output directory (default: tmp)
	Dir string `mapstructure:"dir" toml:"dir" yaml:"dir" json:"dir"`
	// File extension including the dot (default: .py)
	Extension string `mapstructure:"extension" toml:"extension" yaml:"extension" json:"extension"`
	// Module the typing vocabulary is imported from
	TypingModule string `mapstructure:"typing_module" toml:"typing_module" yaml:"typing_module" json:"typing_module"`
	// Run on each written file, e.g. "black -q"
	FormatCommand string `mapstructure:"format_command" toml:"format_command" yaml:"format_command" json:"format_command"`
}

// CatalogConfig configures where entities are read from
type CatalogConfig struct {
	// Catalog manifest (.yaml, .toml or .json)
	Path string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
	// Name of the top-level scope when the manifest does not declare one
	MainModule string `mapstructure:"main_module" toml:"main_module" yaml:"main_module" json:"main_module"`
	// Go package pattern scanned instead of a catalog
	GoPackage string `mapstructure:"go_package" toml:"go_package" yaml:"go_package" json:"go_package"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
}

// ReportConfig configures the run report
type ReportConfig struct {
	// Empty disables the report
	Path string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// File system constants
const (
	DefaultDirPermissions = 0755
)

// ExportOptions returns the export options the configuration describes.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		OutputDir:     c.Output.Dir,
		Extension:     c.Output.Extension,
		TypingModule:  c.Output.TypingModule,
		FormatCommand: c.Output.FormatCommand,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Output: {Dir: %s, Extension: %s}, Catalog: {Path: %s, MainModule: %s}}",
		c.Output.Dir, c.Output.Extension, c.Catalog.Path, c.Catalog.MainModule)
}
