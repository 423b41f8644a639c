package parser

import (
	"strings"

	"github.com/navikt/gemlint/internal/gemparse"
)

// flattenOutput adapts a gemparse.ParseOutput into the flat Dependency
// shape shared across the organization's ecosystem parsers. Each
// declaration becomes one Dependency per version constraint (or a single
// versionless Dependency when it declares none), matching the sibling
// parsers' one-row-per-constraint convention.
func flattenOutput(path, depType string, out *gemparse.ParseOutput) []Dependency {
	var deps []Dependency
	deps = append(deps, flattenBucket(path, depType, "", out.Groups.Runtime)...)
	deps = append(deps, flattenBucket(path, depType, "development", out.Groups.Development)...)
	return deps
}

func flattenBucket(path, depType, group string, decls []gemparse.GemDeclaration) []Dependency {
	var deps []Dependency
	for _, d := range decls {
		g := group
		if g == "" && len(d.Groups) > 0 {
			g = strings.Join(d.Groups, ",")
		}
		if len(d.Versions) == 0 {
			deps = append(deps, Dependency{Name: d.Name, Type: depType, Path: path, Group: g})
			continue
		}
		for _, v := range d.Versions {
			deps = append(deps, Dependency{Name: d.Name, Version: v, Type: depType, Path: path, Group: g})
		}
	}
	return deps
}
