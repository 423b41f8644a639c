package parser

import "testing"

func TestPodspecParserCanParse(t *testing.T) {
	p := PodspecParser{}
	if !p.CanParse("MyLib.podspec") {
		t.Error("expected .podspec to be recognized")
	}
	if p.CanParse("mygem.gemspec") {
		t.Error("did not expect .gemspec to be recognized")
	}
}

func TestPodspecParserParseFile(t *testing.T) {
	input := []byte("Pod::Spec.new do |s|\n" +
		"  s.dependency 'AFNetworking', '~> 3.0'\n" +
		"end")

	deps, err := PodspecParser{}.ParseFile("MyLib.podspec", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 1 {
		t.Fatalf("got %d deps, want 1: %+v", len(deps), deps)
	}
	if deps[0].Name != "AFNetworking" || deps[0].Version != "~> 3.0" || deps[0].Type != "podspec" {
		t.Errorf("unexpected dependency: %+v", deps[0])
	}
}
