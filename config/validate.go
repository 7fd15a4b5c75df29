package config

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/regen/catalog"
	"github.com/teranos/regen/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}
	if !strings.HasPrefix(c.Output.Extension, ".") || len(c.Output.Extension) < 2 {
		return errors.Newf("output.extension must start with a dot, got %q", c.Output.Extension)
	}
	if c.Output.TypingModule == "" {
		return errors.New("output.typing_module cannot be empty")
	}
	if c.Output.FormatCommand != "" {
		if _, err := shellquote.Split(c.Output.FormatCommand); err != nil {
			return errors.Wrapf(err, "output.format_command %q", c.Output.FormatCommand)
		}
	}

	if c.Catalog.MainModule == "" {
		return errors.New("catalog.main_module cannot be empty")
	}
	if c.Catalog.Path != "" && c.Catalog.GoPackage != "" {
		return errors.WithHint(
			errors.New("catalog.path and catalog.go_package are mutually exclusive"),
			"Set only one entity source",
		)
	}
	if c.Catalog.Path != "" {
		if _, err := catalog.FormatFromPath(c.Catalog.Path); err != nil {
			return errors.Wrap(err, "catalog.path")
		}
	}
	return nil
}
