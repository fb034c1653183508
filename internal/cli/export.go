package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

// exportFlags are shared by the export and watch commands.
type exportFlags struct {
	outputs []string
	format  string
	rankdir string
	scale   float64
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.outputs, "output", "o", nil, "output file; repeat for several (format from extension)")
	cmd.Flags().StringVar(&f.format, "format", "", "force the output format: dot, svg, png or pdf")
	cmd.Flags().StringVar(&f.rankdir, "rankdir", "", "graph direction: TB, LR, BT or RL (default from config)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor (default from config)")
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags exportFlags
		force bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the book as a Graphviz graph",
		Long: `Export the story graph. Without -o the DOT text is written to stdout.

Each -o names one output; the format comes from --format, else the file
extension (.dot, .svg, .png, .pdf), else the configured default. Several
outputs are rendered in parallel. Existing files are only replaced after
confirmation or with --force, and the book file itself is never overwritten.`,
		Example: `  choosable export -f romeo.yaml -o romeo.dot
  choosable export -o graph.svg -o graph.png --force
  choosable export | dot -Tsvg > graph.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.loadBook()
			if err != nil {
				return err
			}
			if len(flags.outputs) == 0 {
				opts, err := c.exportOptions(b, flags)
				if err != nil {
					return err
				}
				return nodelink.WriteDOT(b, stdout, opts)
			}

			approved := make(map[string]bool)
			var outputs []string
			for _, out := range flags.outputs {
				if !force && !nodelink.SamePath(out, c.bookPath) && fileExists(out) {
					if !c.confirm(fmt.Sprintf("File %q already exists.  Overwrite", out), false) {
						printWarning("Skipped %s", out)
						continue
					}
					approved[out] = true
				}
				outputs = append(outputs, out)
			}
			if len(outputs) == 0 {
				return errs.New(errs.ErrCodeCanceled, "nothing exported")
			}

			flags.outputs = outputs
			return c.exportAll(cmd.Context(), b, flags, func(path string) bool {
				return force || approved[path]
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files without asking")

	return cmd
}

// exportOptions resolves DOT options from flags and configuration, and
// reports DOT notices for b once.
func (c *CLI) exportOptions(b *book.Book, flags exportFlags) (nodelink.Options, error) {
	opts := c.dotOptions()
	if flags.rankdir != "" {
		opts.Rankdir = strings.ToUpper(flags.rankdir)
	}
	switch opts.Rankdir {
	case "", "TB", "LR", "BT", "RL":
	default:
		return opts, errs.New(errs.ErrCodeInvalidInput, "unknown rankdir %q (want TB, LR, BT or RL)", flags.rankdir)
	}
	opts.Name = nodelink.NameFromPath(c.bookPath)

	// Collect notices up front so parallel renders do not repeat them.
	nodelink.Nodes(b, opts)
	opts.Notify = nil
	return opts, nil
}

// exportAll renders b to every output in parallel. overwrite decides for
// outputs that already exist.
func (c *CLI) exportAll(ctx context.Context, b *book.Book, flags exportFlags, overwrite func(path string) bool) error {
	opts, err := c.exportOptions(b, flags)
	if err != nil {
		return err
	}
	var forced nodelink.Format
	if flags.format != "" {
		if forced, err = nodelink.ParseFormat(flags.format); err != nil {
			return err
		}
	}
	scale := flags.scale
	if scale <= 0 {
		scale = c.cfg.Export.PNGScale
	}

	formats := make([]nodelink.Format, len(flags.outputs))
	slow := false
	for i, out := range flags.outputs {
		if formats[i], err = c.outputFormat(out, forced); err != nil {
			return err
		}
		slow = slow || formats[i] != nodelink.FormatDOT
	}

	var spinner *Spinner
	if slow {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d file(s)...", len(flags.outputs)))
		spinner.Start()
	}
	prog := newProgress(c.Logger)

	g, gctx := errgroup.WithContext(ctx)
	for i, out := range flags.outputs {
		g.Go(func() error {
			err := nodelink.ExportFile(gctx, b, out, nodelink.ExportOptions{
				Options: opts,
				Source:  c.bookPath,
				Confirm: overwrite,
				Format:  formats[i],
				Scale:   scale,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", out, err)
			}
			c.Logger.Debug("exported", "path", out, "format", formats[i])
			return nil
		})
	}
	err = g.Wait()
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Export failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Exported %d file(s)", len(flags.outputs)))
	printSuccess("Exported %s", StyleHighlight.Render(b.Title()))
	for _, out := range flags.outputs {
		printFile(out)
	}
	return nil
}

// outputFormat picks the format for one output: forced, else the file
// extension, else the configured default.
func (c *CLI) outputFormat(path string, forced nodelink.Format) (nodelink.Format, error) {
	if forced != "" {
		return forced, nil
	}
	if f, err := nodelink.ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f, nil
	}
	return nodelink.ParseFormat(c.cfg.Export.Format)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

