package bqsink

import (
	"testing"
	"time"

	"github.com/navikt/gemlint/internal/gemparse"
)

func TestToRowsShapesRuntimeAndDevelopment(t *testing.T) {
	scannedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require := true

	rows := toRows("Gemfile", &gemparse.ParseOutput{SelfName: "app"}, "runtime", []gemparse.GemDeclaration{
		{Name: "rails", Versions: []string{">= 6.0"}, Groups: []string{}, Require: &require},
		{Name: "pg"},
	}, scannedAt)

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].Name != "rails" || rows[0].Bucket != "runtime" || rows[0].Versions != ">= 6.0" {
		t.Errorf("unexpected row 0: %+v", rows[0])
	}
	if !rows[0].HasGroups || !rows[0].HasRequire || !rows[0].Require {
		t.Errorf("expected row 0 to carry present-groups and require=true: %+v", rows[0])
	}
	if rows[1].HasGroups {
		t.Errorf("expected row 1 (nil Groups) to have HasGroups=false: %+v", rows[1])
	}
	if rows[0].RepoPath != "Gemfile" || rows[0].SelfName != "app" {
		t.Errorf("expected repo path/self name to be carried: %+v", rows[0])
	}
}

func TestToRowsEmptyInput(t *testing.T) {
	rows := toRows("Gemfile", &gemparse.ParseOutput{}, "runtime", nil, time.Now())
	if len(rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(rows))
	}
}
