package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/regen/errors"
)

// Format is a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// SupportedVersions is the range of manifest schema versions this build reads.
const SupportedVersions = ">= 1.0, < 2.0"

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.InvalidCatalog(errors.Newf("unsupported catalog extension %q (want .yaml, .toml or .json)", filepath.Ext(path)))
	}
}

// Load reads and validates the catalog at path.
func Load(path string) (*Catalog, error) {
	return LoadWithMain(path, "")
}

// LoadWithMain is Load with a default name for the top-level scope, used when
// the manifest does not declare one.
func LoadWithMain(path, mainModule string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	if m.Main == "" {
		m.Main = mainModule
	}
	c, err := FromManifest(m)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	c.path = path
	return c, nil
}

// Parse decodes a manifest and builds the catalog from it.
func Parse(data []byte, format Format) (*Catalog, error) {
	m, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return FromManifest(m)
}

// Decode decodes a manifest without validating it.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatTOML:
		err = toml.Unmarshal(data, &m)
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	default:
		return nil, errors.InvalidCatalog(errors.Newf("unknown catalog format %q", format))
	}
	if err != nil {
		return nil, errors.InvalidCatalog(errors.Wrapf(err, "failed to decode %s catalog", format))
	}
	return &m, nil
}

// checkVersion rejects manifests outside SupportedVersions.
func checkVersion(raw string) (*semver.Version, error) {
	if raw == "" {
		return nil, errors.New("missing version")
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %s", raw)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version constraint %s", SupportedVersions)
	}
	if !constraint.Check(v) {
		return nil, errors.Newf("catalog version %s is not supported (want %s)", raw, SupportedVersions)
	}
	return v, nil
}
