package parser

import (
	"github.com/navikt/gemlint/internal/gemparse"
	"github.com/navikt/gemlint/internal/manifest"
)

type GemspecParser struct{}

func (p GemspecParser) CanParse(filename string) bool {
	return manifest.Detect(filename) == manifest.Gemspec
}

func (p GemspecParser) ParseFile(path string, data []byte) ([]Dependency, error) {
	out, err := gemparse.Parse(data)
	if err != nil {
		return nil, err
	}
	return flattenOutput(path, "gemspec", out), nil
}

func (p GemspecParser) ParseRepo(files map[string][]byte) ([]Dependency, error) {
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
