// Package scanner walks a directory tree, collects manifest files
// recognized by the manifest package, and parses them concurrently with a
// worker pool bounded by config.Config.Parallelism.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/navikt/gemlint/internal/gemparse"
	"github.com/navikt/gemlint/internal/manifest"
)

// Result pairs a manifest's path with its parse outcome. Err is set when
// the file failed to parse or read; Output is nil in that case.
type Result struct {
	Path   string
	Output *gemparse.ParseOutput
	Err    error
}

// Scan walks root, parsing every recognized manifest file concurrently.
// A per-file failure is recorded in that file's Result rather than
// aborting the scan — a broken manifest must never hide the others'
// results. Only a directory-walk error (root missing, permission denied)
// aborts the whole scan.
func Scan(ctx context.Context, root string, parallelism int) ([]Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	paths, err := discoverManifestPaths(root)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return nil
			}
			results[i] = parseOne(path)
			return nil
		})
	}
	// g.Wait's error is always nil here: parseOne's own errors are
	// recorded per-file, never returned to the group.
	_ = g.Wait()

	return results, nil
}

func discoverManifestPaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if manifest.CanParse(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// CollectManifestFiles walks root and reads every recognized manifest
// file into memory, keyed by path. It is the repo-wide counterpart to
// Scan's per-file streaming: callers that need every file's raw content
// at once (such as a MultiParser aggregate pass) use this instead.
func CollectManifestFiles(root string) (map[string][]byte, error) {
	paths, err := discoverManifestPaths(root)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read manifest", "path", path, "error", err)
			continue
		}
		files[path] = data
	}
	return files, nil
}

func parseOne(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read manifest", "path", path, "error", err)
		return Result{Path: path, Err: fmt.Errorf("read %s: %w", path, err)}
	}

	sink := func(msg string) { slog.Debug("unresolved dynamic construct", "path", path, "detail", msg) }

	out, err := gemparse.ParseWithSink(data, sink)
	if err != nil {
		slog.Warn("failed to parse manifest", "path", path, "error", err)
		return Result{Path: path, Err: fmt.Errorf("parse %s: %w", path, err)}
	}

	return Result{Path: path, Output: out}
}
