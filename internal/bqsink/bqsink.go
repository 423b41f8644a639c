// Package bqsink persists gemparse.ParseOutput results to BigQuery, one
// row per dependency declaration, mirroring bqwriter's schema-inference
// and streaming-insert style.
package bqsink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/navikt/gemlint/internal/gemparse"
)

// Row is the BigQuery-tagged shape of one dependency declaration,
// inferred into a table schema the same way bqwriter.ensureTableExists
// does for its own tables.
type Row struct {
	RepoPath    string    `bigquery:"repo_path"`
	SelfName    string    `bigquery:"self_name"`
	SelfVersion string    `bigquery:"self_version"`
	Name        string    `bigquery:"name"`
	Bucket      string    `bigquery:"bucket"`
	Versions    string    `bigquery:"versions"`
	Git         string    `bigquery:"git"`
	Path        string    `bigquery:"path"`
	Require     bool      `bigquery:"require"`
	HasRequire  bool      `bigquery:"has_require"`
	Groups      string    `bigquery:"groups"`
	HasGroups   bool      `bigquery:"has_groups"`
	Platforms   string    `bigquery:"platforms"`
	ScannedAt   time.Time `bigquery:"scanned_at"`
}

type Sink struct {
	Client  *bigquery.Client
	Dataset string
	Table   string
}

// Open opens a BigQuery client and ensures the destination table exists,
// exactly as bqwriter.NewBigQueryWriter does for each of its tables.
func Open(ctx context.Context, projectID, dataset, table, credentialsFile string) (*Sink, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}

	if err := ensureTableExists(ctx, client, dataset, table); err != nil {
		return nil, fmt.Errorf("ensure table %s exists: %w", table, err)
	}

	return &Sink{Client: client, Dataset: dataset, Table: table}, nil
}

func (s *Sink) Close() error { return s.Client.Close() }

// WriteFile streams every declaration in out, tagged with repoPath, as a
// single batched Inserter.Put call — one batch per manifest file, the
// same granularity bqwriter.insert uses per entity.
func (s *Sink) WriteFile(ctx context.Context, repoPath string, out *gemparse.ParseOutput, scannedAt time.Time) error {
	rows := make([]Row, 0, len(out.Groups.Runtime)+len(out.Groups.Development))
	rows = append(rows, toRows(repoPath, out, "runtime", out.Groups.Runtime, scannedAt)...)
	rows = append(rows, toRows(repoPath, out, "development", out.Groups.Development, scannedAt)...)

	if len(rows) == 0 {
		return nil
	}

	inserter := s.Client.Dataset(s.Dataset).Table(s.Table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("gem_declarations insert failed: %w", err)
	}
	return nil
}

func toRows(repoPath string, out *gemparse.ParseOutput, bucket string, decls []gemparse.GemDeclaration, scannedAt time.Time) []Row {
	rows := make([]Row, 0, len(decls))
	for _, d := range decls {
		row := Row{
			RepoPath:    repoPath,
			SelfName:    out.SelfName,
			SelfVersion: out.SelfVersion,
			Name:        d.Name,
			Bucket:      bucket,
			Versions:    strings.Join(d.Versions, ","),
			Git:         d.Git,
			Path:        d.Path,
			Groups:      strings.Join(d.Groups, ","),
			HasGroups:   d.Groups != nil,
			Platforms:   strings.Join(d.Platforms, ","),
			ScannedAt:   scannedAt,
		}
		if d.Require != nil {
			row.Require = *d.Require
			row.HasRequire = true
		}
		rows = append(rows, row)
	}
	return rows
}

func ensureTableExists(ctx context.Context, client *bigquery.Client, dataset, table string) error {
	tbl := client.Dataset(dataset).Table(table)
	if _, err := tbl.Metadata(ctx); err == nil {
		return nil
	} else if gErr, ok := err.(*googleapi.Error); !ok || gErr.Code != 404 {
		return fmt.Errorf("get table metadata: %w", err)
	}

	schema, err := bigquery.InferSchema(Row{})
	if err != nil {
		return fmt.Errorf("infer schema for %s: %w", table, err)
	}

	if err := tbl.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
