package catalog

// Manifest is the on-disk description of one program's top-level scope.
// Pointer fields distinguish "omitted" (inferred) from "explicitly empty".
type Manifest struct {
	Version   string       `yaml:"version" toml:"version" json:"version"`
	Main      string       `yaml:"main,omitempty" toml:"main,omitempty" json:"main,omitempty"`
	Imports   []ImportSpec `yaml:"imports,omitempty" toml:"imports,omitempty" json:"imports,omitempty"`
	Externals []External   `yaml:"externals,omitempty" toml:"externals,omitempty" json:"externals,omitempty"`
	Entities  []EntitySpec `yaml:"entities" toml:"entities" json:"entities"`
}

// ImportSpec is a module object bound in the top-level scope ("import numpy as np").
type ImportSpec struct {
	Alias  string `yaml:"alias" toml:"alias" json:"alias"`
	Module string `yaml:"module" toml:"module" json:"module"`
}

// External is a class or function defined in another module.
type External struct {
	Name   string `yaml:"name" toml:"name" json:"name"`
	Module string `yaml:"module" toml:"module" json:"module"`
	Kind   string `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
}

// AnnotationSpec is one name → type-expression pair.
type AnnotationSpec struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	Type string `yaml:"type" toml:"type" json:"type"`
}

// EntitySpec is an exportable object of the top-level scope.
type EntitySpec struct {
	Name        string           `yaml:"name" toml:"name" json:"name"`
	Kind        string           `yaml:"kind" toml:"kind" json:"kind"`
	Bases       []string         `yaml:"bases,omitempty" toml:"bases,omitempty" json:"bases,omitempty"`
	Fields      []string         `yaml:"fields,omitempty" toml:"fields,omitempty" json:"fields,omitempty"`
	Annotations []AnnotationSpec `yaml:"annotations,omitempty" toml:"annotations,omitempty" json:"annotations,omitempty"`
	Source      *string          `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	Globals     *[]string        `yaml:"globals,omitempty" toml:"globals,omitempty" json:"globals,omitempty"`
	Nonlocals   []string         `yaml:"nonlocals,omitempty" toml:"nonlocals,omitempty" json:"nonlocals,omitempty"`
	Unbound     *[]string        `yaml:"unbound,omitempty" toml:"unbound,omitempty" json:"unbound,omitempty"`
	Members     []MemberSpec     `yaml:"members,omitempty" toml:"members,omitempty" json:"members,omitempty"`
}

// MemberSpec is a callable declared directly in a class body.
type MemberSpec struct {
	Name        string           `yaml:"name" toml:"name" json:"name"`
	Annotations []AnnotationSpec `yaml:"annotations,omitempty" toml:"annotations,omitempty" json:"annotations,omitempty"`
	Source      *string          `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	Globals     *[]string        `yaml:"globals,omitempty" toml:"globals,omitempty" json:"globals,omitempty"`
	Nonlocals   []string         `yaml:"nonlocals,omitempty" toml:"nonlocals,omitempty" json:"nonlocals,omitempty"`
	Unbound     *[]string        `yaml:"unbound,omitempty" toml:"unbound,omitempty" json:"unbound,omitempty"`
}

// Entity kinds accepted in a manifest.
const (
	KindClass    = "class"
	KindRecord   = "record"
	KindFunction = "function"
)
