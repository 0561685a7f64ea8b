package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/layoutview/pkg/cache"
	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/layoutfile"
	"github.com/matzehuels/layoutview/pkg/observability"
	"github.com/matzehuels/layoutview/pkg/odb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// keyType labels cache hook events.
const keyType = "design"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// A Runner is safe for concurrent use. Concurrent runs of the same design
// share one load: the later callers wait for the first and receive its
// result.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Open    odb.Opener
	Decoder odb.Decoder
	Logger  *log.Logger

	// TTL bounds how long encoded snapshots stay cached. NewRunner sets it
	// to cache.TTLDesign.
	TTL time.Duration

	// NativeText reports that Open returns a database reading LEF/DEF
	// text. Execute then checks the DEF design header and classifies
	// unlabeled LEF files before loading.
	NativeText bool

	group singleflight.Group
}

// NewRunner creates a runner.
// If cache is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If open or dec is nil, the in-memory database and its decoder are used.
func NewRunner(c cache.Cache, keyer cache.Keyer, open odb.Opener, dec odb.Decoder, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if open == nil {
		open = memdb.Open
	}
	if dec == nil {
		dec = memdb.Decoder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Open:    open,
		Decoder: dec,
		Logger:  logger,
		TTL:     cache.TTLDesign,
	}
}

// Execute runs the complete load → materialize → export pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	if err := r.prepare(opts.Files); err != nil {
		return nil, err
	}

	key, err := r.Key(opts.Files, opts.Compress)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh {
		if res, ok := r.cached(ctx, key, logger); ok {
			return res, nil
		}
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.run(ctx, key, opts, logger)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("joined in-flight design load", "key", key)
	}
	res := *v.(*Result)
	return &res, nil
}

// Key returns the cache key of a design: a hash over the content of every
// file in load order.
func (r *Runner) Key(files *layoutfile.DesignFiles, compress bool) (string, error) {
	lefs := techFirst(files.LEF)
	digests := make([]string, 0, len(lefs)+1)
	for _, f := range lefs {
		d, err := digest(lefRole(f), f.FilePath)
		if err != nil {
			return "", err
		}
		digests = append(digests, d)
	}
	d, err := digest("def", files.DEF.FilePath)
	if err != nil {
		return "", err
	}
	digests = append(digests, d)
	return r.Keyer.DesignKey(digests, cache.DesignKeyOpts{Compress: compress}), nil
}

func lefRole(f *layoutfile.DesignFile) string {
	switch {
	case f.IsTech && f.IsLibrary:
		return "techlib"
	case f.IsTech:
		return "tech"
	default:
		return "lib"
	}
}

func digest(role, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
		}
		return "", errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
	}
	return cache.FileDigest(role, data), nil
}

// cached looks key up. Backend errors and unreadable entries count as
// misses.
func (r *Runner) cached(ctx context.Context, key string, logger *log.Logger) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}

	c, err := snapshot.DecodeCompact(bytes.NewReader(data))
	if err != nil {
		logger.Warn("dropping unreadable cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	logger.Debug("cache hit", "design", c.Name, "bytes", len(data))

	return &Result{
		JSON:     data,
		Key:      key,
		CacheHit: true,
		Summary:  SummarizeCompact(c),
		Stats:    Stats{Bytes: len(data)},
	}, true
}

// run loads, exports and caches one design.
func (r *Runner) run(ctx context.Context, key string, opts Options, logger *log.Logger) (*Result, error) {
	loaded, stats, err := r.build(ctx, opts.Files, logger)
	if err != nil {
		return nil, err
	}
	summary := Summarize(loaded.Design)

	logger.Info("materialized design",
		"design", summary.Design,
		"instances", summary.Instances,
		"nets", summary.Nets,
		"unresolved", summary.Unresolved,
		"duration", stats.LoadTime+stats.MaterializeTime)

	// Stage 3: Export
	exportStart := time.Now()
	data, err := snapshot.EncodeJSON(loaded.Design, opts.Compress)
	stats.ExportTime = time.Since(exportStart)
	stats.Bytes = len(data)
	observability.Pipeline().OnExportComplete(ctx, len(data), opts.Compress, stats.ExportTime, err)

	freed, closeErr := loaded.Close()
	stats.Freed = freed.Freed
	if closeErr != nil {
		logger.Warn("closing database", "err", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	logger.Info("exported design",
		"bytes", len(data),
		"compressed", opts.Compress,
		"duration", stats.ExportTime)

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}

	return &Result{
		JSON:    data,
		Key:     key,
		Summary: summary,
		Stats:   stats,
	}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
