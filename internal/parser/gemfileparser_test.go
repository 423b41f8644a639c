package parser

import "testing"

func TestGemfileParserCanParse(t *testing.T) {
	p := GemfileParser{}
	if !p.CanParse("Gemfile") {
		t.Error("expected Gemfile to be recognized")
	}
	if p.CanParse("Podfile") {
		t.Error("did not expect Podfile to be recognized")
	}
}

func TestGemfileParserParseFile(t *testing.T) {
	input := []byte("source 'https://rubygems.org'\n\ngem 'rails', '6.1.4'\ngem 'pg'\ngem 'puma', '~> 5.0'\n")

	deps, err := GemfileParser{}.ParseFile("Gemfile", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{"rails": "6.1.4", "pg": "", "puma": "~> 5.0"}
	if len(deps) != len(want) {
		t.Fatalf("got %d deps, want %d: %+v", len(deps), len(want), deps)
	}
	for _, d := range deps {
		if d.Type != "gem" || d.Path != "Gemfile" {
			t.Errorf("unexpected dependency shape: %+v", d)
		}
		wantVersion, ok := want[d.Name]
		if !ok {
			t.Errorf("unexpected dependency name %q", d.Name)
			continue
		}
		if d.Version != wantVersion {
			t.Errorf("dependency %q version = %q, want %q", d.Name, d.Version, wantVersion)
		}
	}
}

func TestGemfileParserParseRepo(t *testing.T) {
	files := map[string][]byte{
		"Gemfile":     []byte("gem 'rails'\n"),
		"unrelated":   []byte("noise"),
		"sub/Gemfile": []byte("gem 'pg'\n"),
	}
	deps, err := GemfileParser{}.ParseRepo(files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("got %d deps, want 2: %+v", len(deps), deps)
	}
}
