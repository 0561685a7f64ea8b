package cli

import (
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/layoutfile"
)

// designFlags name the files of a design on the command line.
type designFlags struct {
	tech    string   // technology LEF
	techLib string   // LEF carrying both technology and cells
	libs    []string // cell library LEFs
	design  string   // DEF
}

func (f *designFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tech, "tech", "", "technology LEF file")
	cmd.Flags().StringVar(&f.techLib, "techlib", "", "LEF file with both technology and cell library")
	cmd.Flags().StringSliceVar(&f.libs, "lib", nil, "cell library LEF file (repeatable)")
	cmd.Flags().StringVar(&f.design, "design", "", "DEF file")
	_ = cmd.MarkFlagRequired("design")
	cmd.MarkFlagsMutuallyExclusive("tech", "techlib")
}

// files builds the design file set in the order the flags list them.
// Validation of the set itself is left to the pipeline.
func (f *designFlags) files() (*layoutfile.DesignFiles, error) {
	fs := &layoutfile.DesignFiles{}
	id := 0
	add := func(path, typ string, tech, lib bool) error {
		if err := errs.ValidatePath(path); err != nil {
			return err
		}
		id++
		return fs.Add(&layoutfile.DesignFile{
			ID:        id,
			Type:      typ,
			FileName:  path,
			FilePath:  path,
			IsTech:    tech,
			IsLibrary: lib,
		})
	}

	if f.tech != "" {
		if err := add(f.tech, layoutfile.TypeLEF, true, false); err != nil {
			return nil, err
		}
	}
	if f.techLib != "" {
		if err := add(f.techLib, layoutfile.TypeLEF, true, true); err != nil {
			return nil, err
		}
	}
	for _, lib := range f.libs {
		if err := add(lib, layoutfile.TypeLEF, false, true); err != nil {
			return nil, err
		}
	}
	if err := add(f.design, layoutfile.TypeDEF, false, false); err != nil {
		return nil, err
	}
	return fs, nil
}
