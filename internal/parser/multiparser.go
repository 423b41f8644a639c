package parser

type MultiParser struct {
	all []Parser
}

func NewMultiParser() *MultiParser {
	return &MultiParser{
		all: []Parser{
			&GemfileParser{},
			&PodfileParser{},
			&GemspecParser{},
			&PodspecParser{},
		},
	}
}

func (m *MultiParser) ParseFiles(files map[string][]byte) ([]Dependency, error) {
	var result []Dependency
	usedPaths := make(map[string]bool)

	for _, p := range m.all {
		supportedPaths := make(map[string][]byte)
		for path, content := range files {
			if p.CanParse(path) {
				supportedPaths[path] = content
			}
		}
		if len(supportedPaths) == 0 {
			continue
		}

		if deps, err := p.ParseRepo(supportedPaths); err == nil && deps != nil {
			result = append(result, deps...)
			for path := range supportedPaths {
				usedPaths[path] = true
			}
			continue
		}

		for path, content := range supportedPaths {
			deps, err := p.ParseFile(path, content)
			if err != nil {
				continue
			}
			result = append(result, deps...)
			usedPaths[path] = true
		}
	}

	return result, nil
}
