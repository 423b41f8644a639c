package parser

import (
	"github.com/navikt/gemlint/internal/gemparse"
	"github.com/navikt/gemlint/internal/manifest"
)

type GemfileParser struct{}

func (p GemfileParser) CanParse(filename string) bool {
	return manifest.Detect(filename) == manifest.Gemfile
}

func (p GemfileParser) ParseFile(path string, data []byte) ([]Dependency, error) {
	out, err := gemparse.Parse(data)
	if err != nil {
		return nil, err
	}
	return flattenOutput(path, "gem", out), nil
}

func (p GemfileParser) ParseRepo(files map[string][]byte) ([]Dependency, error) {
	var all []Dependency
	for path, data := range files {
		if !p.CanParse(path) {
			continue
		}
		deps, err := p.ParseFile(path, data)
		if err != nil {
			continue
		}
		all = append(all, deps...)
	}
	return all, nil
}
