package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// =============================================================================
// Characters
// =============================================================================

// characterCommand creates the "character" command group.
func (c *CLI) characterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Add, rename, recolor or delete characters",
	}

	var fill, font string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := c.newCharacter(args[0])
			if fill != "" {
				ch.FillColor = fill
			}
			if font != "" {
				ch.FontColor = font
			}
			for _, color := range []string{ch.FillColor, ch.FontColor} {
				if err := errs.ValidateColor(color); err != nil {
					return err
				}
			}
			if err := c.editBook(func(b *book.Book) error {
				_, err := b.AddCharacterObj(ch)
				return err
			}); err != nil {
				return err
			}
			printSuccess("Added character %s", StyleHighlight.Render(ch.Name))
			return nil
		},
	}
	add.Flags().StringVar(&fill, "fill", "", "Graphviz fill color (default from config)")
	add.Flags().StringVar(&font, "font", "", "Graphviz font color (default from config)")

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a character on every page that uses it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var moved int
			if err := c.editBook(func(b *book.Book) error {
				moved = len(b.CharacterUsage(args[0]))
				return b.RenameCharacter(args[0], args[1])
			}); err != nil {
				return err
			}
			printSuccess("Renamed %s to %s", args[0], StyleHighlight.Render(args[1]))
			printDetail("%d page(s) updated", moved)
			return nil
		},
	}

	var colorFill, colorFont string
	color := &cobra.Command{
		Use:   "color <name>",
		Short: "Change a character's Graphviz colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if colorFill == "" && colorFont == "" {
				return errs.New(errs.ErrCodeInvalidInput, "give --fill, --font or both")
			}
			if err := c.editBook(func(b *book.Book) error {
				return b.SetCharacterColors(args[0], colorFill, colorFont)
			}); err != nil {
				return err
			}
			printSuccess("Updated colors of %s", StyleHighlight.Render(args[0]))
			return nil
		},
	}
	color.Flags().StringVar(&colorFill, "fill", "", "Graphviz fill color")
	color.Flags().StringVar(&colorFont, "font", "", "Graphviz font color")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a character no page uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.editBook(func(b *book.Book) error {
				return b.DeleteCharacter(args[0])
			}); err != nil {
				return err
			}
			printSuccess("Deleted character %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, rename, color, del)
	return cmd
}

// =============================================================================
// Pages
// =============================================================================

// pageCommand creates the "page" command group.
func (c *CLI) pageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Add, edit or delete pages",
	}

	var character, summary string
	add := &cobra.Command{
		Use:   "add <page>",
		Short: "Add a page",
		Long: `Add a page. The page id is a number, or a label for pages outside the
numbered sequence. A reservation for the same id is cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePageArg(args[0])
			if err != nil {
				return err
			}
			if err := c.editBook(func(b *book.Book) error {
				_, err := b.AddPage(id, character, summary)
				return err
			}); err != nil {
				return err
			}
			printSuccess("Added page %s", StyleNumber.Render(id.String()))
			return nil
		},
	}
	add.Flags().StringVarP(&character, "character", "c", "", "character of the page")
	add.Flags().StringVarP(&summary, "summary", "s", "", "page summary")
	_ = add.MarkFlagRequired("character")

	del := &cobra.Command{
		Use:   "delete <page>",
		Short: "Delete a page; choices leading to it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePageArg(args[0])
			if err != nil {
				return err
			}
			var inbound []book.PageID
			if err := c.editBook(func(b *book.Book) error {
				inbound = b.Inbound(id)
				return b.DeletePage(id)
			}); err != nil {
				return err
			}
			printSuccess("Page %s deleted", id)
			if len(inbound) > 0 {
				printDetail("still referenced by page(s) %s", joinIDs(inbound))
			}
			return nil
		},
	}

	setSummary := &cobra.Command{
		Use:   "summary <page> <text...>",
		Short: "Replace a page's summary",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				p.SetSummary(strings.Join(args[1:], " "))
				return fmt.Sprintf("Updated summary of page %s", p.ID()), nil
			})
		},
	}

	setCharacter := &cobra.Command{
		Use:   "character <page> <name>",
		Short: "Move a page to another character",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				if err := b.SetPageCharacter(p.ID(), args[1]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Page %s now belongs to %s", p.ID(), StyleHighlight.Render(args[1])), nil
			})
		},
	}

	canon := &cobra.Command{
		Use:   "canon <page>",
		Short: "Toggle whether a page is on the canonical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				return fmt.Sprintf("Page %s canonical: %t", p.ID(), p.ToggleCanonical()), nil
			})
		},
	}

	ending := &cobra.Command{
		Use:   "ending <page>",
		Short: "Toggle whether a page is an ending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				return fmt.Sprintf("Page %s ending: %t", p.ID(), p.ToggleEnding()), nil
			})
		},
	}

	cmd.AddCommand(add, del, setSummary, setCharacter, canon, ending)
	return cmd
}

// editPage runs fn on one existing page and saves the book.
// On success the message fn returns is printed.
func (c *CLI) editPage(arg string, fn func(b *book.Book, p *book.Page) (string, error)) error {
	id, err := parsePageArg(arg)
	if err != nil {
		return err
	}
	var msg string
	if err := c.editBook(func(b *book.Book) error {
		p, err := lookupPage(b, id)
		if err != nil {
			return err
		}
		msg, err = fn(b, p)
		return err
	}); err != nil {
		return err
	}
	printSuccess("%s", msg)
	return nil
}

// =============================================================================
// Choices
// =============================================================================

// choiceCommand creates the "choice" command group.
func (c *CLI) choiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "choice",
		Short: "Add or delete choices on a page",
	}

	add := &cobra.Command{
		Use:   "add <page> <target> <summary...>",
		Short: "Add a choice leading from page to target",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parsePageArg(args[1])
			if err != nil {
				return err
			}
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				if _, err := p.AddChoice(target, strings.Join(args[2:], " ")); err != nil {
					return "", err
				}
				return fmt.Sprintf("Page %s %s %s", p.ID(), iconArrow, target), nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <page> <target>",
		Short: "Delete the choice leading from page to target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parsePageArg(args[1])
			if err != nil {
				return err
			}
			return c.editPage(args[0], func(b *book.Book, p *book.Page) (string, error) {
				if err := p.DeleteChoice(target); err != nil {
					return "", err
				}
				return fmt.Sprintf("Deleted choice %s %s %s", p.ID(), iconArrow, target), nil
			})
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

// =============================================================================
// Intermediate markers
// =============================================================================

// intermediateCommand creates the "intermediate" command group.
func (c *CLI) intermediateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "intermediate",
		Aliases: []string{"reserve"},
		Short:   "Reserve or release page ids that are not written yet",
	}

	add := &cobra.Command{
		Use:   "add <page>...",
		Short: "Reserve page ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePageArgs(args)
			if err != nil {
				return err
			}
			if err := c.editBook(func(b *book.Book) error {
				for _, id := range ids {
					if err := b.AddIntermediate(id); err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				return err
			}
			printSuccess("Reserved %s", joinIDs(ids))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <page>...",
		Short: "Release reserved page ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePageArgs(args)
			if err != nil {
				return err
			}
			if err := c.editBook(func(b *book.Book) error {
				for _, id := range ids {
					b.DeleteIntermediate(id)
				}
				return nil
			}); err != nil {
				return err
			}
			printSuccess("Released %s", joinIDs(ids))
			return nil
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

func parsePageArgs(args []string) ([]book.PageID, error) {
	ids := make([]book.PageID, 0, len(args))
	for _, a := range args {
		id, err := parsePageArg(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
