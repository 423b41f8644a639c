// Package pgsink persists gemparse.ParseOutput results to Postgres, one
// row per dependency declaration, in the sibling repo-import tool's
// connection-pool and per-file-transaction style.
package pgsink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/navikt/gemlint/internal/gemparse"
)

const insertDeclarationSQL = `
INSERT INTO gem_declarations
	(repo_path, self_name, self_version, name, bucket, versions, git, path, require, groups, platforms, scanned_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type Sink struct {
	DB *sql.DB
}

// Open opens a Postgres connection pool sized the way the sibling tool
// sizes its own — one connection is enough for a batch of sequential,
// per-file transactions.
func Open(dsn string) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &Sink{DB: db}, nil
}

func (s *Sink) Close() error { return s.DB.Close() }

// WriteFile writes every declaration in out, tagged with repoPath, inside
// a single transaction — rolling back and wrapping the error on any
// failure, matching dbwriter.PostgresWriter.ImportRepo's shape.
func (s *Sink) WriteFile(ctx context.Context, repoPath string, out *gemparse.ParseOutput, scannedAt time.Time) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start tx: %w", err)
	}

	if err := writeBucket(ctx, tx, repoPath, out, "runtime", out.Groups.Runtime, scannedAt); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("write runtime declarations failed: %v (rollback failed: %w)", err, rbErr)
		}
		return fmt.Errorf("write runtime declarations: %w", err)
	}
	if err := writeBucket(ctx, tx, repoPath, out, "development", out.Groups.Development, scannedAt); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("write development declarations failed: %v (rollback failed: %w)", err, rbErr)
		}
		return fmt.Errorf("write development declarations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func writeBucket(ctx context.Context, tx *sql.Tx, repoPath string, out *gemparse.ParseOutput, bucket string, decls []gemparse.GemDeclaration, scannedAt time.Time) error {
	for _, d := range decls {
		var require sql.NullBool
		if d.Require != nil {
			require = sql.NullBool{Bool: *d.Require, Valid: true}
		}
		groups := sql.NullString{String: strings.Join(d.Groups, ","), Valid: d.Groups != nil}

		_, err := tx.ExecContext(ctx, insertDeclarationSQL,
			repoPath,
			nullIfEmpty(out.SelfName),
			nullIfEmpty(out.SelfVersion),
			d.Name,
			bucket,
			strings.Join(d.Versions, ","),
			nullIfEmpty(d.Git),
			nullIfEmpty(d.Path),
			require,
			groups,
			strings.Join(d.Platforms, ","),
			scannedAt,
		)
		if err != nil {
			return fmt.Errorf("insert %s declaration %q: %w", bucket, d.Name, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
