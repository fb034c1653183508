package cli

import (
	"context"
	"net"

	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/internal/server"
	"github.com/apocalyptech/choosable/internal/watch"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

// watchCommand creates the "watch" command.
func (c *CLI) watchCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export the graph whenever the book file changes",
		Long: `Export once, then again each time the book file is saved, until
interrupted. Outputs are overwritten without asking; the book file itself is
still never overwritten.`,
		Example: `  choosable watch -f romeo.yaml -o romeo.svg`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(flags.outputs) == 0 {
				return errs.New(errs.ErrCodeInvalidInput, "give at least one output with -o")
			}
			ctx := cmd.Context()
			overwrite := func(string) bool { return true }

			b, err := c.loadBook()
			if err != nil {
				return err
			}
			if err := c.exportAll(ctx, b, flags, overwrite); err != nil {
				return err
			}

			printNewline()
			printInfo("Watching %s (Ctrl+C to stop)", c.bookPath)
			return watch.File(ctx, c.bookPath, watch.Options{Logger: c.Logger}, func(ctx context.Context) {
				b, err := c.loadBook()
				if err != nil {
					c.Logger.Error("reload failed", "path", c.bookPath, "err", errs.UserMessage(err))
					return
				}
				if err := c.exportAll(ctx, b, flags, overwrite); err != nil {
					c.Logger.Error("export failed", "err", errs.UserMessage(err))
				}
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of the book over HTTP",
		Long: `Serve a read-only preview of the book. The file is re-read on every
request, so edits show up on reload.

Endpoints:
  /           HTML page embedding the graph
  /book.svg   rendered graph (cached)
  /book.dot   DOT source
  /book.json  pages, characters and authoring reports
  /healthz    liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Serve.Addr
			}
			if _, _, err := net.SplitHostPort(addr); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidInput, err, "address %q", addr)
			}
			// Fail early on a missing or broken book.
			if _, err := c.loadBook(); err != nil {
				return err
			}

			store := c.newCache()
			defer store.Close()

			opts := c.dotOptions()
			opts.Name = nodelink.NameFromPath(c.bookPath)
			srv := server.New(server.Options{
				Book:   c.bookPath,
				DOT:    opts,
				Cache:  store,
				TTL:    c.cfg.Cache.TTL.Duration,
				Logger: c.Logger,
			})

			printDetail("Ctrl+C to stop")
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
