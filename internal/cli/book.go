package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// initCommand creates the "init" command, which starts a new book.
func (c *CLI) initCommand() *cobra.Command {
	var (
		title     string
		character string
		summary   string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new book with its first page",
		Long: `Create a new book file holding one character and page 1.

Every saved book needs at least one character and one page, so both are
created together.`,
		Example: `  choosable init --title "Romeo and/or Juliet" --character Juliet --summary "On the balcony"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.bookPath); err == nil && !force {
				return errs.New(errs.ErrCodeConflict, "%s already exists (use --force to replace it)", c.bookPath)
			}
			if strings.TrimSpace(summary) == "" {
				return errs.New(errs.ErrCodeInvalidInput, "page 1 needs a summary")
			}

			b := book.New(title)
			if _, err := b.AddCharacterObj(c.newCharacter(character)); err != nil {
				return err
			}
			if _, err := b.AddPage(book.PageNum(1), character, summary); err != nil {
				return err
			}
			if err := c.saveBook(b); err != nil {
				return err
			}

			printSuccess("Created %s", StyleHighlight.Render(title))
			printFile(c.bookPath)
			printNewline()
			printNextStep("Start editing", appName+" shell -f "+c.bookPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&character, "character", "", "character of page 1")
	cmd.Flags().StringVar(&summary, "summary", "", "summary of page 1")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing book file")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("character")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [page]",
		Short: "Show the book overview, or one page with its choices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.loadBook()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printBook(b, c.bookPath)
				return nil
			}
			id, err := parsePageArg(args[0])
			if err != nil {
				return err
			}
			p, err := lookupPage(b, id)
			if err != nil {
				return err
			}
			printPage(b, p)
			return nil
		},
	}
}

// printBook prints the book overview and its authoring reports.
func printBook(b *book.Book, path string) {
	fmt.Fprintln(stdout, StyleTitle.Render(b.Title()))
	printDetail("%s", path)
	printNewline()
	printKeyValue("Characters", strconv.Itoa(b.CharacterCount()))
	printKeyValue("Pages", strconv.Itoa(b.PageCount()))
	printKeyValue("Intermediates", strconv.Itoa(len(b.Intermediates())))

	missing := b.MissingRanges()
	dangling := b.DanglingTargets()
	if len(missing) > 0 {
		printKeyValue("Missing pages", joinRanges(missing))
	}
	if len(dangling) > 0 {
		printKeyValue("Unwritten", joinIDs(dangling))
	}
	if len(missing) == 0 && len(dangling) == 0 {
		printNewline()
		printSuccess("Every page up to %s is accounted for", highestPage(b))
	}
}

// printPage prints a page the way the shell shows the current page: flags,
// character, summary and each choice with whether its target was visited.
func printPage(b *book.Book, p *book.Page) {
	printRule()
	if p.Canonical {
		printBanner("CANON")
	}
	if p.Ending {
		printBanner("THE END")
	}
	printKeyValue("Current Page", p.ID().String())
	printKeyValue("Current Character", p.Character())
	printNewline()
	fmt.Fprintf(stdout, "Summary: %s\n", p.Summary)
	if p.ChoiceCount() > 0 {
		printNewline()
		for _, ch := range p.Choices() {
			fmt.Fprintf(stdout, "  %s (turn to page %s%s)\n", ch.Summary, StyleNumber.Render(ch.Target.String()), visitNote(b, ch.Target))
		}
	}
	printRule()
}

// visitNote describes a choice target for [printPage].
func visitNote(b *book.Book, target book.PageID) string {
	if p, ok := b.Page(target); ok {
		if p.Canonical {
			return " - visited (CANON)"
		}
		return " - visited"
	}
	if b.HasIntermediate(target) {
		return " - reserved"
	}
	return ""
}

// listCommand creates the "list" command and its report subcommands.
func (c *CLI) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages, characters and authoring reports",
	}

	report := func(use, short string, fn func(b *book.Book)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := c.loadBook()
				if err != nil {
					return err
				}
				fn(b)
				return nil
			},
		}
	}

	cmd.AddCommand(report("pages", "List all pages", listPages))
	cmd.AddCommand(report("characters", "List characters with their colors and page counts", listCharacters))
	cmd.AddCommand(report("intermediates", "List reserved page ids", listIntermediates))
	cmd.AddCommand(report("missing", "List page numbers that are neither written nor reserved", listMissing))
	cmd.AddCommand(report("dangling", "List choice targets with no page and no reservation", listDangling))

	return cmd
}

func listPages(b *book.Book) {
	var rows [][]string
	for _, p := range b.Pages() {
		rows = append(rows, []string{
			p.ID().String(), p.Character(), p.Summary,
			strconv.Itoa(p.ChoiceCount()), yesNo(p.Canonical), yesNo(p.Ending),
		})
	}
	printTable("No pages", []string{"Page", "Character", "Summary", "Choices", "Canon", "Ending"}, rows)
}

func listCharacters(b *book.Book) {
	var rows [][]string
	for _, ch := range b.Characters() {
		rows = append(rows, []string{ch.Name, ch.FillColor, ch.FontColor, strconv.Itoa(len(b.CharacterUsage(ch.Name)))})
	}
	printTable("No characters", []string{"Name", "Fill", "Font", "Pages"}, rows)
}

func listIntermediates(b *book.Book) {
	var rows [][]string
	for _, id := range b.Intermediates() {
		rows = append(rows, []string{id.String(), joinIDs(b.Inbound(id))})
	}
	printTable("No intermediate pages", []string{"Page", "Referenced by"}, rows)
}

func listMissing(b *book.Book) {
	missing := b.MissingRanges()
	if len(missing) == 0 {
		printSuccess("No missing pages")
		return
	}
	printInfo("Missing pages: %s", joinRanges(missing))
}

func listDangling(b *book.Book) {
	var rows [][]string
	for _, id := range b.DanglingTargets() {
		rows = append(rows, []string{id.String(), joinIDs(b.Inbound(id))})
	}
	printTable("No unwritten choice targets", []string{"Target", "Referenced by"}, rows)
}

// =============================================================================
// Formatting
// =============================================================================

func joinRanges(rs []book.PageRange) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

func joinIDs(ids []book.PageID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

// highestPage is the largest page number in use, for the overview.
func highestPage(b *book.Book) string {
	highest := 0
	for _, p := range b.Pages() {
		if n, ok := p.ID().Number(); ok {
			highest = max(highest, n)
		}
	}
	return strconv.Itoa(highest)
}
