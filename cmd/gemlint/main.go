package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/navikt/gemlint/internal/bqsink"
	"github.com/navikt/gemlint/internal/config"
	"github.com/navikt/gemlint/internal/gemparse"
	"github.com/navikt/gemlint/internal/gemtoken"
	"github.com/navikt/gemlint/internal/logger"
	"github.com/navikt/gemlint/internal/parser"
	"github.com/navikt/gemlint/internal/pgsink"
	"github.com/navikt/gemlint/internal/scanner"
)

// lexErrors is the subset of gemtoken's closed message set produced by
// the tokenizer itself, as opposed to "name literal expected" and
// "nesting too deep", which are parser-level fatal errors. Of the two
// classes, only a lexer error forces a non-zero exit.
var lexErrors = map[string]bool{
	gemtoken.ErrTokenQuotaExceeded:  true,
	gemtoken.ErrRunawayLexer:        true,
	gemtoken.ErrUnknownCharacter:    true,
	gemtoken.ErrUnterminatedString:  true,
	gemtoken.ErrStringTooLong:       true,
	gemtoken.ErrUnterminatedSymbol:  true,
	gemtoken.ErrSymbolTooLong:       true,
	gemtoken.ErrUnterminatedPercent: true,
	gemtoken.ErrPercentTooLong:      true,
}

func isLexError(err error) bool {
	var perr *gemtoken.Error
	if !errors.As(err, &perr) {
		return false
	}
	return lexErrors[perr.Message]
}

// sink is the common shape pgsink.Sink and bqsink.Sink both satisfy.
type sink interface {
	WriteFile(ctx context.Context, path string, out *gemparse.ParseOutput, scannedAt time.Time) error
}

type fileResult struct {
	Path   string                `json:"path"`
	Output *gemparse.ParseOutput `json:"output,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func main() {
	dir := flag.String("dir", "", "recursively scan this directory for manifests")
	storageFlag := flag.String("storage", "", "postgres|bigquery|none (default: GEMLINT_STORAGE, or none)")
	parallelism := flag.Int("parallelism", 0, "override GEMLINT_PARALLELISM")
	debug := flag.Bool("debug", false, "raise log level to debug")
	flat := flag.Bool("flat", false, "emit a flattened, cross-ecosystem dependency list instead of per-file output (requires -dir)")
	flag.Parse()

	cfg := config.LoadConfigWithEnv(os.Getenv)
	if *storageFlag != "" {
		cfg.Storage = config.StorageType(*storageFlag)
	}
	if *parallelism > 0 {
		cfg.Parallelism = *parallelism
	}
	if *debug {
		cfg.Debug = true
	}

	logger.SetupLogger()
	logger.SetDebug(cfg.Debug)

	if err := config.ValidateConfig(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *flat {
		if *dir == "" {
			slog.Error("-flat requires -dir")
			os.Exit(1)
		}
		runFlatMode(*dir)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing in-flight work")
	}()

	sk, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage sink", "error", err)
		os.Exit(1)
	}
	if closeSink != nil {
		defer closeSink()
	}

	failed := false
	if *dir != "" {
		failed = runDirMode(ctx, *dir, cfg, sk)
	} else {
		failed = runFileMode(ctx, flag.Args(), sk)
	}

	if failed {
		os.Exit(1)
	}
}

func runDirMode(ctx context.Context, dir string, cfg config.Config, sk sink) bool {
	scanResults, err := scanner.Scan(ctx, dir, cfg.Parallelism)
	if err != nil {
		slog.Error("scan failed", "dir", dir, "error", err)
		os.Exit(1)
	}

	failed := false
	results := make([]fileResult, 0, len(scanResults))
	for _, r := range scanResults {
		fr := fileResult{Path: r.Path}
		switch {
		case r.Err != nil:
			fr.Error = r.Err.Error()
			if isLexError(r.Err) {
				failed = true
			}
		default:
			fr.Output = r.Output
			writeToSink(ctx, sk, r.Path, r.Output)
		}
		results = append(results, fr)
	}

	printJSON(results)
	return failed
}

func runFileMode(ctx context.Context, paths []string, sk sink) bool {
	if len(paths) == 0 {
		slog.Error("no input: pass one or more manifest paths, or -dir")
		os.Exit(1)
	}

	failed := false
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("failed to read file", "path", path, "error", err)
			failed = true
			continue
		}

		out, err := gemparse.ParseWithSink(data, func(msg string) {
			slog.Debug("unresolved dynamic construct", "path", path, "detail", msg)
		})
		if err != nil {
			slog.Warn("failed to parse manifest", "path", path, "error", err)
			if isLexError(err) {
				failed = true
			}
			continue
		}

		writeToSink(ctx, sk, path, out)
		printJSON(out)
	}
	return failed
}

// runFlatMode reports every recognized manifest under dir as one flat,
// cross-ecosystem dependency list via parser.MultiParser, instead of the
// per-file, per-ecosystem structured output the default mode produces.
func runFlatMode(dir string) {
	files, err := scanner.CollectManifestFiles(dir)
	if err != nil {
		slog.Error("scan failed", "dir", dir, "error", err)
		os.Exit(1)
	}

	deps, err := parser.NewMultiParser().ParseFiles(files)
	if err != nil {
		slog.Error("flat parse failed", "dir", dir, "error", err)
		os.Exit(1)
	}

	printJSON(deps)
}

func writeToSink(ctx context.Context, sk sink, path string, out *gemparse.ParseOutput) {
	if sk == nil {
		return
	}
	if err := sk.WriteFile(ctx, path, out, time.Now()); err != nil {
		slog.Warn("failed to persist parse result", "path", path, "error", err)
	}
}

func openSink(ctx context.Context, cfg config.Config) (sink, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		s, err := pgsink.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageBigQuery:
		s, err := bqsink.Open(ctx, cfg.BQProjectID, cfg.BQDataset, cfg.BQTable, cfg.BQCredentials)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, nil
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to encode output", "error", err)
	}
}
