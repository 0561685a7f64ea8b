package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/layoutfile"
	"github.com/matzehuels/layoutview/pkg/observability"
	"github.com/matzehuels/layoutview/pkg/odb"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// Loaded is a live snapshot together with the database it was built from.
type Loaded struct {
	DB     odb.Database
	Design *snapshot.Design
}

// Close releases the snapshot and closes the database.
func (l *Loaded) Close() (snapshot.ReleaseStats, error) {
	stats := l.Design.Release()
	return stats, l.DB.Close()
}

// LoadDesign validates files, reads them into a new database and builds a
// snapshot. The caller owns the result and must Close it.
func (r *Runner) LoadDesign(ctx context.Context, files *layoutfile.DesignFiles) (*Loaded, error) {
	loaded, _, err := r.load(ctx, files, r.Logger)
	return loaded, err
}

func (r *Runner) load(ctx context.Context, files *layoutfile.DesignFiles, logger *log.Logger) (*Loaded, Stats, error) {
	if err := r.prepare(files); err != nil {
		return nil, Stats{}, err
	}
	return r.build(ctx, files, logger)
}

// prepare classifies and validates files.
func (r *Runner) prepare(files *layoutfile.DesignFiles) error {
	if files == nil {
		return errs.New(errs.ErrCodeInvalidDesignFiles, "At least one LEF file is required")
	}
	if r.NativeText {
		if err := r.inspect(files); err != nil {
			return err
		}
	}
	return files.Validate()
}

// build loads prepared files and materializes the snapshot.
func (r *Runner) build(ctx context.Context, files *layoutfile.DesignFiles, logger *log.Logger) (*Loaded, Stats, error) {
	var stats Stats
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, len(files.LEF)+1)
	db, err := r.readFiles(files)
	stats.LoadTime = time.Since(loadStart)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, "", stats.LoadTime, err)
		return nil, stats, err
	}
	designName := db.Chip().Block().Name()
	observability.Pipeline().OnLoadComplete(ctx, designName, stats.LoadTime, nil)
	logger.Debug("loaded design", "design", designName, "lef", len(files.LEF), "duration", stats.LoadTime)

	buildStart := time.Now()
	d, err := snapshot.NewBuilder(r.Decoder, logger).Build(db)
	stats.MaterializeTime = time.Since(buildStart)
	if err != nil {
		observability.Pipeline().OnMaterializeComplete(ctx, designName, 0, stats.MaterializeTime, err)
		db.Close()
		return nil, stats, fmt.Errorf("materialize: %w", err)
	}
	observability.Pipeline().OnMaterializeComplete(ctx, designName, d.Stats.Unresolved, stats.MaterializeTime, nil)
	stats.Allocated = d.Allocated()

	return &Loaded{DB: db, Design: d}, stats, nil
}

// readFiles opens a database and loads the technology LEF, the remaining
// LEF files in upload order, then the DEF file against every library read.
func (r *Runner) readFiles(files *layoutfile.DesignFiles) (odb.Database, error) {
	db, err := r.Open()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeDatabaseInit, err, "Failed to create database")
	}

	var libs []odb.Lib
	for _, f := range techFirst(files.LEF) {
		name := layoutfile.LibraryName(f.FilePath)
		var lib odb.Lib
		switch {
		case f.IsTech && f.IsLibrary:
			lib, err = db.ReadTechAndLib(name, f.FilePath)
		case f.IsTech:
			_, err = db.ReadTech(f.FilePath)
		default:
			lib, err = db.ReadLib(name, f.FilePath)
		}
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error parsing LEF file(s): %w", err)
		}
		if lib != nil {
			libs = append(libs, lib)
		}
	}

	if _, err := db.ReadDesign(files.DEF.FilePath, libs); err != nil {
		db.Close()
		return nil, fmt.Errorf("error parsing DEF file(s): %w", err)
	}
	if db.Chip() == nil || db.Chip().Block() == nil {
		db.Close()
		return nil, errs.New(errs.ErrCodeNoDesign, "error parsing DEF file(s): no design block")
	}
	return db, nil
}

func techFirst(lefs []*layoutfile.DesignFile) []*layoutfile.DesignFile {
	out := make([]*layoutfile.DesignFile, 0, len(lefs))
	for _, f := range lefs {
		if f.IsTech {
			out = append(out, f)
		}
	}
	for _, f := range lefs {
		if !f.IsTech {
			out = append(out, f)
		}
	}
	return out
}

// inspect checks the DEF header and classifies LEF files the uploader left
// unlabeled. It only applies to native LEF/DEF text.
func (r *Runner) inspect(files *layoutfile.DesignFiles) error {
	for _, f := range files.LEF {
		if err := withFile(f.FilePath, func(fh *os.File) error { return layoutfile.ClassifyLEF(f, fh) }); err != nil {
			return err
		}
	}
	if files.DEF == nil {
		return nil
	}
	return withFile(files.DEF.FilePath, func(fh *os.File) error {
		_, err := layoutfile.ValidateDEF(fh)
		return err
	})
}

func withFile(path string, fn func(*os.File) error) error {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer fh.Close()
	return fn(fh)
}
