// Package cli implements the choosable command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/internal/config"
	"github.com/apocalyptech/choosable/pkg/book"
	"github.com/apocalyptech/choosable/pkg/buildinfo"
	"github.com/apocalyptech/choosable/pkg/cache"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	bookio "github.com/apocalyptech/choosable/pkg/io"
	"github.com/apocalyptech/choosable/pkg/render/nodelink"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "choosable"

	// defaultBookFile is used when --file is not given.
	defaultBookFile = "book.yaml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg        *config.Config
	bookPath   string
	configPath string

	// verbose is set by main when -v was given; it wins over [log] level.
	verbose bool

	// newReader replaces the terminal line reader in tests.
	newReader func(prompt, historyFile string) (lineReader, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. A debug level also pins the
// level against the configuration file.
func (c *CLI) SetLogLevel(level log.Level) {
	c.verbose = level == log.DebugLevel
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Choosable maps chooseable-path books as graphs",
		Long: `Choosable records the pages, characters and choices of a chooseable-path
book in a YAML file and exports the story graph for Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.bookPath, "file", "f", defaultBookFile, "book data file")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+config.EnvConfigPath+" or ~/.config/choosable/config.toml)")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.characterCommand())
	root.AddCommand(c.pageCommand())
	root.AddCommand(c.choiceCommand())
	root.AddCommand(c.intermediateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.shellCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and applies its log level.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if !c.verbose {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "log level")
		}
		c.Logger.SetLevel(level)
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "book", c.bookPath)
	return nil
}

// =============================================================================
// Book Helpers
// =============================================================================

// loadBook reads the book named by --file.
func (c *CLI) loadBook() (*book.Book, error) {
	b, err := bookio.Load(c.bookPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeNotFound, err, "no book at %s (create one with `%s init`)", c.bookPath, appName)
	}
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("book loaded", "path", c.bookPath, "pages", b.PageCount(), "characters", b.CharacterCount())
	return b, nil
}

// saveBook writes b back to --file.
func (c *CLI) saveBook(b *book.Book) error {
	if err := bookio.Save(b, c.bookPath); err != nil {
		return err
	}
	c.Logger.Debug("book saved", "path", c.bookPath)
	return nil
}

// editBook loads the book, applies fn and saves the result. Nothing is
// written if fn fails.
func (c *CLI) editBook(fn func(b *book.Book) error) error {
	b, err := c.loadBook()
	if err != nil {
		return err
	}
	if err := fn(b); err != nil {
		return err
	}
	return c.saveBook(b)
}

// newCharacter applies the configured default colors to a new character.
func (c *CLI) newCharacter(name string) book.Character {
	return book.Character{Name: name, FillColor: c.cfg.Characters.Fill, FontColor: c.cfg.Characters.Font}
}

// =============================================================================
// Export Helpers
// =============================================================================

// dotOptions builds DOT options from the configuration. Notices about
// export decisions are logged as warnings.
func (c *CLI) dotOptions() nodelink.Options {
	return nodelink.Options{
		Rankdir:    c.cfg.Export.Rankdir,
		EndingFill: c.cfg.Export.EndingFill,
		EndingFont: c.cfg.Export.EndingFont,
		Notify:     func(msg string) { c.Logger.Warn(msg) },
	}
}

// newCache opens the rendered-artifact cache, or a null cache when caching
// is disabled or the cache directory is unusable.
func (c *CLI) newCache() cache.Cache {
	if c.cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parsePageArg parses a page id argument.
func parsePageArg(s string) (book.PageID, error) {
	id, err := book.ParsePageID(s)
	if err != nil {
		return book.PageID{}, fmt.Errorf("page %q: %w", s, err)
	}
	return id, nil
}

// lookupPage returns the page id names, or NOT_FOUND.
func lookupPage(b *book.Book, id book.PageID) (*book.Page, error) {
	p, ok := b.Page(id)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "page %s not found", id)
	}
	return p, nil
}
