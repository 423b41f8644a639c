package parser

import "testing"

func TestGemspecParserCanParse(t *testing.T) {
	p := GemspecParser{}
	if !p.CanParse("mygem.gemspec") {
		t.Error("expected .gemspec to be recognized")
	}
	if p.CanParse("mygem.podspec") {
		t.Error("did not expect .podspec to be recognized")
	}
}

func TestGemspecParserParseFile(t *testing.T) {
	input := []byte("Gem::Specification.new do |s|\n" +
		"  s.name = 'mygem'\n" +
		"  s.add_runtime_dependency 'foo', '~> 1.0'\n" +
		"  s.add_development_dependency 'rspec'\n" +
		"end")

	deps, err := GemspecParser{}.ParseFile("mygem.gemspec", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("got %d deps, want 2: %+v", len(deps), deps)
	}

	byName := map[string]Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	if byName["foo"].Version != "~> 1.0" || byName["foo"].Group != "" {
		t.Errorf("unexpected runtime dep: %+v", byName["foo"])
	}
	if byName["rspec"].Group != "development" {
		t.Errorf("expected rspec to be grouped development: %+v", byName["rspec"])
	}
}
