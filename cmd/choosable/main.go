// Command choosable records the pages, characters and choices of a
// chooseable-path book and exports its story graph.
//
// Run without a subcommand it opens the interactive page editor on the
// configured book file. Subcommands edit the book in place, list authoring
// reports and export or serve the graph.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/internal/cli"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := report(os.Stderr, run(ctx))
	cancel()
	os.Exit(code)
}

// report prints err for the user and returns the process exit code.
// An interrupted edit exits with 130, like a shell killed by SIGINT.
func report(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	fmt.Fprintln(w, "Error:", errs.UserMessage(err))
	return 1
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	addVerboseFlag(c, root)
	return root.ExecuteContext(ctx)
}

// addVerboseFlag adds -v to root. The book editor logs at debug level when
// it is set; the level is applied before the root pre-run reads the config
// so that config loading is logged too.
func addVerboseFlag(c *cli.CLI, root *cobra.Command) {
	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log book loading, saving and export steps")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		} else {
			c.SetLogLevel(cli.LogInfo)
		}
		if loadConfig == nil {
			return nil
		}
		return loadConfig(cmd, args)
	}
}
