// Package gemparse implements a lenient recursive-descent parser over the
// gemtoken token stream, recognizing the Gemfile/Podfile/gemspec/podspec
// DSL subset and skipping everything else in the surrounding source
// without aborting.
package gemparse

import "encoding/json"

// GemDeclaration is one gem/pod dependency declaration.
//
// Groups is nil when the field should be omitted from the emitted
// record entirely — declarations classified as development dependencies,
// declarations that carried a trailing "if" conditional, and spec
// statements using the bare "dependency" method all omit it. A non-nil,
// possibly empty, slice means the field is present.
type GemDeclaration struct {
	Name      string
	Versions  []string
	Git       string
	Path      string
	Require   *bool
	Groups    []string
	Platforms []string
}

// declWithGroups and declWithoutGroups back GemDeclaration's MarshalJSON:
// encoding/json's "omitempty" cannot distinguish a nil Groups from a
// present-but-empty one, so presence is chosen by picking one of two
// field sets instead.
type declWithGroups struct {
	Name      string   `json:"name"`
	Platforms []string `json:"platforms"`
	Versions  []string `json:"versions"`
	Groups    []string `json:"groups"`
	Git       string   `json:"git,omitempty"`
	Path      string   `json:"path,omitempty"`
	Require   *bool    `json:"require,omitempty"`
}

type declWithoutGroups struct {
	Name      string   `json:"name"`
	Platforms []string `json:"platforms"`
	Versions  []string `json:"versions"`
	Git       string   `json:"git,omitempty"`
	Path      string   `json:"path,omitempty"`
	Require   *bool    `json:"require,omitempty"`
}

// MarshalJSON emits fields in a fixed canonical order, omitting
// "groups" entirely when Groups is nil.
func (d GemDeclaration) MarshalJSON() ([]byte, error) {
	platforms := d.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	versions := d.Versions
	if versions == nil {
		versions = []string{}
	}
	if d.Groups != nil {
		return json.Marshal(declWithGroups{
			Name: d.Name, Platforms: platforms, Versions: versions,
			Groups: d.Groups, Git: d.Git, Path: d.Path, Require: d.Require,
		})
	}
	return json.Marshal(declWithoutGroups{
		Name: d.Name, Platforms: platforms, Versions: versions,
		Git: d.Git, Path: d.Path, Require: d.Require,
	})
}

// DependencyGroups holds the two dependency buckets a manifest can
// declare into.
type DependencyGroups struct {
	Runtime     []GemDeclaration `json:"runtime"`
	Development []GemDeclaration `json:"development"`
}

// ParseOutput is the parser's sole product: the manifest's own identity,
// if declared, plus its runtime and development dependencies in source
// order.
type ParseOutput struct {
	SelfName    string            `json:"selfName,omitempty"`
	SelfVersion string            `json:"selfVersion,omitempty"`
	Groups      DependencyGroups  `json:"groups"`
}

func newParseOutput() *ParseOutput {
	return &ParseOutput{Groups: DependencyGroups{Runtime: []GemDeclaration{}, Development: []GemDeclaration{}}}
}
