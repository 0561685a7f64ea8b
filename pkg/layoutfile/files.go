// Package layoutfile describes the files that make up an uploaded design
// and checks them before they reach a layout database.
//
// A design is one DEF file plus one or more LEF files. Exactly one LEF file
// carries the technology; at least one carries cell libraries, and a single
// file may do both. [DesignFiles.Validate] enforces this, and [InspectLEF]
// and [InspectDEF] read just enough of each file's header to classify it
// and to reject files a database reader would choke on.
package layoutfile

import (
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/layoutview/pkg/errors"
)

// File types as they appear in upload metadata.
const (
	TypeLEF = "lef"
	TypeDEF = "def"
)

// DesignFile is one file of a design. ID, Type, FileName and the LEF
// classification come from the uploader; FilePath is where the file was
// stored.
type DesignFile struct {
	ID        int
	Type      string
	FileName  string
	FilePath  string
	IsTech    bool
	IsLibrary bool
}

// DesignFiles is the complete file set of one design.
type DesignFiles struct {
	DEF *DesignFile
	LEF []*DesignFile
}

// Add records f under its type. A second DEF file or an unknown type is an
// INVALID_DESIGN_FILES error.
func (fs *DesignFiles) Add(f *DesignFile) error {
	switch strings.ToLower(f.Type) {
	case TypeDEF:
		if fs.DEF != nil {
			return errs.New(errs.ErrCodeInvalidDesignFiles, "Only one DEF file per design is supported")
		}
		fs.DEF = f
	case TypeLEF:
		fs.LEF = append(fs.LEF, f)
	default:
		return errs.New(errs.ErrCodeInvalidDesignFiles, "Invalid file type %s", f.Type)
	}
	return nil
}

// Validate checks that the set can form a design. The first failing rule
// is reported.
func (fs *DesignFiles) Validate() error {
	if len(fs.LEF) == 0 {
		return errs.New(errs.ErrCodeInvalidDesignFiles, "At least one LEF file is required")
	}
	if fs.DEF == nil {
		return errs.New(errs.ErrCodeInvalidDesignFiles, "One DEF file is required")
	}
	var hasTech, hasLib bool
	for _, f := range fs.LEF {
		if f.IsTech {
			if hasTech {
				return errs.New(errs.ErrCodeInvalidDesignFiles, "Only one LEF technology file is allowed")
			}
			hasTech = true
		}
		if f.IsLibrary {
			hasLib = true
		}
		if !f.IsTech && !f.IsLibrary {
			return errs.New(errs.ErrCodeInvalidDesignFiles, "LEF file must be technology or library file")
		}
	}
	if !hasTech {
		return errs.New(errs.ErrCodeInvalidDesignFiles, "LEF technology file is required")
	}
	if !hasLib {
		return errs.New(errs.ErrCodeInvalidDesignFiles, "LEF library file is required")
	}
	return nil
}

// Paths returns the stored paths of all files, LEF files first.
func (fs *DesignFiles) Paths() []string {
	paths := make([]string, 0, len(fs.LEF)+1)
	for _, f := range fs.LEF {
		paths = append(paths, f.FilePath)
	}
	if fs.DEF != nil {
		paths = append(paths, fs.DEF.FilePath)
	}
	return paths
}

// LibraryName derives a library name from a file path: the base name
// without its extension.
func LibraryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
