package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutview/pkg/pipeline"
)

// snapshotOpts holds the flags of the snapshot command.
type snapshotOpts struct {
	files   designFlags
	output  string // output path; "-" writes to stdout
	gzip    bool   // gzip the JSON
	cache   string // cache backend override
	refresh bool   // ignore cached snapshots
	quiet   bool   // skip the summary table
}

// snapshotCommand creates the snapshot command.
func (c *CLI) snapshotCommand() *cobra.Command {
	var opts snapshotOpts

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the viewer snapshot of a design",
		Long: `Load a design and write its compact snapshot JSON, the document the
browser viewer draws. Snapshots are cached by file content; --refresh
rebuilds a cached one.`,
		Example: `  layoutview snapshot --tech tech.lef --lib cells.lef --design top.def
  layoutview snapshot --techlib pdk.lef --design top.def -o top.json.gz --gzip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshot(cmd.Context(), &opts)
		},
	}

	opts.files.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: DEF name with .json), - for stdout")
	cmd.Flags().BoolVar(&opts.gzip, "gzip", false, "gzip-compress the JSON")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "cache backend: file, redis, none (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even if the snapshot is cached")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the design summary")

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, opts *snapshotOpts) error {
	logger := loggerFromContext(ctx)

	files, err := opts.files.files()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, os.Stderr, "Loading "+filepath.Base(opts.files.design))
	if !c.verbose {
		spinner.Start()
	}
	res, err := runner.Execute(ctx, pipeline.Options{
		Files:    files,
		Compress: opts.gzip,
		Refresh:  opts.refresh,
	})
	if !c.verbose {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("Built snapshot of " + res.Summary.Design)

	out := snapshotPath(opts.output, opts.files.design, opts.gzip)
	if out == "-" {
		_, err := os.Stdout.Write(res.JSON)
		return err
	}
	if err := os.WriteFile(out, res.JSON, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if !opts.quiet {
		printSummary(os.Stdout, res.Summary)
	}
	printSuccess("Exported %s", res.Summary.Design)
	printFile(out)
	printStats(res.Stats.Bytes, opts.gzip, res.CacheHit)
	if res.Summary.Unresolved > 0 {
		printWarning("%d references could not be resolved (see log)", res.Summary.Unresolved)
	}
	printNextStep("Draw the layer stack", fmt.Sprintf("%s render layers %s -o layers.svg", appName, designArgs(&opts.files)))
	return nil
}

// snapshotPath derives the output path from the DEF path when output is
// empty.
func snapshotPath(output, design string, compressed bool) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(design, filepath.Ext(design)) + ".json"
	if compressed {
		base += ".gz"
	}
	return base
}

// designArgs renders the design flags for a suggested command line.
func designArgs(f *designFlags) string {
	var parts []string
	if f.tech != "" {
		parts = append(parts, "--tech "+f.tech)
	}
	if f.techLib != "" {
		parts = append(parts, "--techlib "+f.techLib)
	}
	for _, lib := range f.libs {
		parts = append(parts, "--lib "+lib)
	}
	parts = append(parts, "--design "+f.design)
	return strings.Join(parts, " ")
}
