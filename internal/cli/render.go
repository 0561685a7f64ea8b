package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutview/pkg/render/nodelink"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the flags shared by the render subcommands.
type renderOpts struct {
	files    designFlags
	output   string // output path; empty writes DOT to stdout
	format   string // dot or svg; default from the output extension
	detailed bool   // layer rules and routing counts in labels
}

// renderCommand creates the render command and its subcommands.
func (c *CLI) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the layer stack or a net as a node-link diagram",
	}

	cmd.AddCommand(c.renderLayersCommand())
	cmd.AddCommand(c.renderNetCommand())

	return cmd
}

func (c *CLI) renderLayersCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Draw the technology layer stack and via definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), &opts, func(d *snapshot.Design) (string, error) {
				return nodelink.LayerStackDOT(d, nodelink.Options{Detailed: opts.detailed}), nil
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) renderNetCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "net NAME",
		Short: "Draw the pins connected by one net",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), &opts, func(d *snapshot.Design) (string, error) {
				return nodelink.NetDOT(d, args[0], nodelink.Options{Detailed: opts.detailed})
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func (o *renderOpts) register(cmd *cobra.Command) {
	o.files.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (.dot or .svg); DOT to stdout when empty")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: dot, svg (default from --output extension)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "show layer rules and routing details")
}

// outputFormat resolves --format, falling back to the output extension.
func (o *renderOpts) outputFormat() (string, error) {
	format := strings.ToLower(o.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(o.output)), ".")
	}
	switch format {
	case "", formatDOT, "gv":
		return formatDOT, nil
	case formatSVG:
		if o.output == "" {
			return "", fmt.Errorf("svg output needs --output")
		}
		return formatSVG, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
}

// runRender loads the design, builds DOT with toDOT and writes it in the
// requested format.
func (c *CLI) runRender(ctx context.Context, opts *renderOpts, toDOT func(*snapshot.Design) (string, error)) error {
	logger := loggerFromContext(ctx)

	format, err := opts.outputFormat()
	if err != nil {
		return err
	}
	files, err := opts.files.files()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, backendNone)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	loaded, err := runner.LoadDesign(ctx, files)
	if err != nil {
		return err
	}
	defer loaded.Close()
	prog.done("Loaded " + loaded.Design.Name)

	dot, err := toDOT(loaded.Design)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := fmt.Fprint(os.Stdout, dot)
		return err
	}

	data := []byte(dot)
	if format == formatSVG {
		if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", loaded.Design.Name)
	printFile(opts.output)
	return nil
}
