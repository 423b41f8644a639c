package pgsink_test

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/navikt/gemlint/internal/gemparse"
	"github.com/navikt/gemlint/internal/pgsink"
)

func TestWriteFileInsertsOneRowPerDeclaration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := &pgsink.Sink{DB: db}
	out := &gemparse.ParseOutput{
		SelfName: "mygem",
		Groups: gemparse.DependencyGroups{
			Runtime: []gemparse.GemDeclaration{
				{Name: "rails", Versions: []string{">= 6.0"}, Groups: []string{}},
			},
			Development: []gemparse.GemDeclaration{
				{Name: "rspec", Versions: []string{"~> 3.0"}},
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO gem_declarations").
		WithArgs("Gemfile", "mygem", nil, "rails", "runtime", ">= 6.0", nil, nil, nil, "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO gem_declarations").
		WithArgs("Gemfile", "mygem", nil, "rspec", "development", "~> 3.0", nil, nil, nil, nil, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = sink.WriteFile(context.Background(), "Gemfile", out, time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFileRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := &pgsink.Sink{DB: db}
	out := &gemparse.ParseOutput{
		Groups: gemparse.DependencyGroups{
			Runtime: []gemparse.GemDeclaration{{Name: "rails"}},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO gem_declarations").WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err = sink.WriteFile(context.Background(), "Gemfile", out, time.Now())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
