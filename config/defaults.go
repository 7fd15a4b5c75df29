package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/regen/entity"
	"github.com/teranos/regen/export"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", export.DefaultOutputDir)
	v.SetDefault("output.extension", export.DefaultExtension)
	v.SetDefault("output.typing_module", entity.TypingModule)
	v.SetDefault("output.format_command", "")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.main_module", entity.DefaultMainModule)
	v.SetDefault("catalog.go_package", "")

	v.SetDefault("log.json", false)
	v.SetDefault("report.path", "")
}

// BindEnvVars binds the keys most often overridden in CI to explicit variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("output.dir", "REGEN_OUTPUT_DIR")
	v.BindEnv("output.format_command", "REGEN_OUTPUT_FORMAT_COMMAND")
	v.BindEnv("catalog.path", "REGEN_CATALOG_PATH")
}
