package cmd

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/regen/catalog"
	"github.com/teranos/regen/config"
	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/errors"
	"github.com/teranos/regen/goscan"
	"github.com/teranos/regen/logger"
)

// entitySource is what the commands need from a catalog or a scanned package.
type entitySource interface {
	entity.Introspector
	Lookup(name string) (entity.Ref, bool)
	Entities() []entity.Ref
}

// sourceFlags are shared by every command that reads entities.
type sourceFlags struct {
	catalogPath   string
	goPackage     string
	outputDir     string
	extension     string
	typingModule  string
	formatCommand string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.catalogPath, "catalog", "c", "", "Catalog manifest (.yaml, .toml, .json)")
	cmd.Flags().StringVar(&f.goPackage, "go-package", "", "Go package pattern to scan instead of a catalog")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output directory")
	cmd.Flags().StringVar(&f.extension, "extension", "", "Output file extension")
	cmd.Flags().StringVar(&f.typingModule, "typing-module", "", "Module the typing vocabulary is imported from")
	cmd.Flags().StringVar(&f.formatCommand, "format-command", "", "Formatter run on each written file")
}

// apply overlays the flags that were set on cfg and validates the result.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("catalog") {
		cfg.Catalog.Path = f.catalogPath
		cfg.Catalog.GoPackage = ""
	}
	if changed("go-package") {
		cfg.Catalog.GoPackage = f.goPackage
		if !changed("catalog") {
			cfg.Catalog.Path = ""
		}
	}
	if changed("output") {
		cfg.Output.Dir = f.outputDir
	}
	if changed("extension") {
		cfg.Output.Extension = f.extension
	}
	if changed("typing-module") {
		cfg.Output.TypingModule = f.typingModule
	}
	if changed("format-command") {
		cfg.Output.FormatCommand = f.formatCommand
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if cfg.Catalog.Path == "" && cfg.Catalog.GoPackage == "" {
		return errors.WithHint(
			errors.New("no entity source configured"),
			"Pass --catalog <file> or --go-package <pattern>, or set catalog.path in regen.toml",
		)
	}
	return nil
}

// resolvedConfig loads the configuration with the command's flags applied.
// The cached config is copied so flags never leak between commands.
func (f *sourceFlags) resolvedConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := *loaded
	if err := f.apply(cmd, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func openSource(ctx context.Context, cfg *config.Config) (entitySource, error) {
	if cfg.Catalog.GoPackage != "" {
		logger.Debugw("Scanning Go package", "pattern", cfg.Catalog.GoPackage)
		scanner, err := goscan.Load(ctx, cfg.Catalog.GoPackage)
		if err != nil {
			return nil, err
		}
		return scanner, nil
	}
	logger.Debugw("Loading catalog", logger.FieldCatalog, cfg.Catalog.Path)
	c, err := catalog.LoadWithMain(cfg.Catalog.Path, cfg.Catalog.MainModule)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// selectEntities maps names to refs, or returns every entity when all is set.
func selectEntities(src entitySource, names []string, all bool) ([]entity.Ref, error) {
	if all {
		return src.Entities(), nil
	}
	if len(names) == 0 {
		return nil, errors.WithHint(errors.New("no entities named"), "Pass entity names or --all")
	}

	var refs []entity.Ref
	var unknown []string
	for _, name := range names {
		ref, ok := src.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		refs = append(refs, ref)
	}
	if len(unknown) > 0 {
		known := make([]string, 0, len(src.Entities()))
		for _, ref := range src.Entities() {
			known = append(known, src.DeclaredName(ref))
		}
		sort.Strings(known)
		return nil, errors.WithHintf(
			errors.Newf("unknown entities: %s", strings.Join(unknown, ", ")),
			"Known entities: %s", strings.Join(known, ", "),
		)
	}
	return refs, nil
}
