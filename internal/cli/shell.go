package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/apocalyptech/choosable/internal/config"
	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
	bookio "github.com/apocalyptech/choosable/pkg/io"
)

// shellCommand creates the "shell" command.
func (c *CLI) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit the book interactively",
		Long: `Walk through the book page by page, adding choices and pages as you
read. If the book file does not exist yet a new book is started.

Type a page number to jump to it (it is created if it does not exist yet),
or h for the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history := c.cfg.Shell.HistoryFile
			if history == "" {
				history = config.DefaultHistoryFile()
			}
			rl, err := c.openReader("> ", history)
			if err != nil {
				return err
			}
			s := newSession(c, rl)
			if readline.DefaultIsTerminal() {
				s.pick = runCharacterPicker
			}
			defer func() { s.rl.Close() }()
			return s.run(cmd.Context())
		},
	}
}

// session is one interactive editing run over a single book.
type session struct {
	cli  *CLI
	rl   lineReader
	book *book.Book
	page *book.Page
	char string

	// dirty is set by every edit and cleared by saving.
	dirty bool

	// pick shows a full-screen character picker. Nil selects by number
	// on the prompt instead.
	pick func(rows []CharacterRow, current string) (int, error)
}

func newSession(c *CLI, rl lineReader) *session {
	return &session{cli: c, rl: rl}
}

// run opens the book and processes commands until quit or end of input.
func (s *session) run(ctx context.Context) error {
	if err := s.open(); err != nil {
		if errs.IsCanceled(err) || errors.Is(err, io.EOF) {
			printInfo("Exiting!")
			return nil
		}
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.status()
		s.rl.SetPrompt(s.prompt())
		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			printInfo("Use 'q' to quit")
			continue
		}
		if errors.Is(err, io.EOF) {
			// No way left to ask; keep the work.
			if s.dirty {
				return s.save()
			}
			return nil
		}
		if err != nil {
			return err
		}

		args := parseArgs(line)
		if len(args) == 0 {
			continue
		}
		quit, err := s.exec(args)
		if err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}
			printError("%s", errs.UserMessage(err))
		}
		if quit {
			return nil
		}
	}
}

func (s *session) prompt() string {
	return fmt.Sprintf("[page %s] > ", s.page.ID())
}

// open loads the book or, after confirmation, starts a new one with a first
// character and page 1. A loaded book without pages gets page 1 the same way.
func (s *session) open() error {
	path := s.cli.bookPath
	b, err := bookio.Load(path)
	if err == nil {
		s.book = b
		printSuccess("Loaded Book %q", b.Title())
		if b.PageCount() == 0 {
			printWarning("%q has no pages yet", path)
			return s.firstPage()
		}
		p, ok := b.Page(book.PageNum(1))
		if !ok {
			p = b.Pages()[0]
		}
		s.setPage(p)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	printWarning("%q does not exist", path)
	ok, err := askYesNo(s.rl, "Continue as a new book", true)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.ErrCodeCanceled, "no book")
	}

	printNewline()
	title, err := ask(s.rl, "Book Title")
	if err != nil {
		return err
	}
	s.book = book.New(title)
	return s.firstPage()
}

// firstPage asks for a character and writes page 1 with it.
func (s *session) firstPage() error {
	for s.char == "" {
		name, err := s.pickCharacter()
		if err != nil {
			if errs.IsCanceled(err) || errors.Is(err, io.EOF) {
				return err
			}
			printError("%s", errs.UserMessage(err))
			continue
		}
		s.char = name
	}
	for s.page == nil {
		if err := s.createPage(book.PageNum(1)); err != nil {
			return err
		}
	}
	return s.save()
}

func (s *session) setPage(p *book.Page) {
	s.page = p
	s.char = p.Character()
}

// status shows the current page and the menu.
func (s *session) status() {
	printNewline()
	printPage(s.book, s.page)
	fmt.Fprintln(stdout, "[a] Add Choice [d] Delete Choice [c] Character")
	fmt.Fprintln(stdout, "[p/##] Page [x] Delete Page [l] List Pages [u] Update Summary")
	fmt.Fprintln(stdout, "[t] Toggle Canonical [e] Toggle Ending [i] Reserve Page [m] Missing Pages")
	fmt.Fprintln(stdout, "[s] Save [q] Quit [h] Help")
}

// exec runs one command line. It reports whether the session should end.
func (s *session) exec(args []string) (bool, error) {
	if isPageNumber(args[0]) {
		return false, s.switchPage(args[:1])
	}

	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "a", "add":
		return false, s.addChoice(rest)
	case "d", "del":
		return false, s.deleteChoice(rest)
	case "c", "char":
		return false, s.changeCharacter()
	case "p", "page":
		return false, s.switchPage(rest)
	case "x", "delpage":
		return false, s.deletePage(rest)
	case "l", "list":
		listPages(s.book)
	case "u", "summary":
		return false, s.updateSummary(rest)
	case "t", "canon":
		s.dirty = true
		printSuccess("Page %s canonical: %t", s.page.ID(), s.page.ToggleCanonical())
	case "e", "ending":
		s.dirty = true
		printSuccess("Page %s ending: %t", s.page.ID(), s.page.ToggleEnding())
	case "i", "reserve":
		return false, s.toggleIntermediate(rest)
	case "m", "missing":
		listMissing(s.book)
		listDangling(s.book)
	case "s", "save":
		return false, s.save()
	case "q", "quit", "exit":
		return true, s.quit()
	case "h", "help", "?":
		printShellHelp()
	default:
		return false, errs.New(errs.ErrCodeInvalidInput, "unknown option %q, try again (h for help)", args[0])
	}
	return false, nil
}

// =============================================================================
// Pages
// =============================================================================

// switchPage moves to a page, creating it if it does not exist.
func (s *session) switchPage(args []string) error {
	id, err := s.pageArg(args, "Page Number")
	if err != nil {
		return err
	}
	if p, ok := s.book.Page(id); ok {
		s.setPage(p)
		return nil
	}
	return s.createPage(id)
}

// createPage adds page id for the current character. An empty summary
// cancels and leaves the current page unchanged.
func (s *session) createPage(id book.PageID) error {
	printNewline()
	printInfo("Creating new page %s", id)
	summary, err := ask(s.rl, "Page Summary (enter to cancel)")
	if err != nil {
		return err
	}
	if summary == "" {
		return nil
	}
	p, err := s.book.AddPage(id, s.char, summary)
	if err != nil {
		return err
	}
	s.dirty = true
	s.setPage(p)
	return nil
}

// deletePage removes a page other than the current one.
func (s *session) deletePage(args []string) error {
	id, err := s.pageArg(args, "Page Number to delete")
	if err != nil {
		return err
	}
	if id == s.page.ID() {
		return errs.New(errs.ErrCodeConflict, "refusing to delete current page - switch to a different page")
	}
	if err := s.book.DeletePage(id); err != nil {
		return err
	}
	s.dirty = true
	printSuccess("Page %s deleted!", id)
	return nil
}

func (s *session) updateSummary(args []string) error {
	summary := strings.Join(args, " ")
	if len(args) == 0 {
		var err error
		if summary, err = ask(s.rl, "New Page Summary"); err != nil {
			return err
		}
	}
	s.page.SetSummary(summary)
	s.dirty = true
	return nil
}

// toggleIntermediate reserves an unwritten page id, or releases it if it is
// already reserved.
func (s *session) toggleIntermediate(args []string) error {
	id, err := s.pageArg(args, "Page Number to reserve")
	if err != nil {
		return err
	}
	if s.book.HasIntermediate(id) {
		s.book.DeleteIntermediate(id)
		s.dirty = true
		printSuccess("Released page %s", id)
		return nil
	}
	if err := s.book.AddIntermediate(id); err != nil {
		return err
	}
	s.dirty = true
	printSuccess("Reserved page %s", id)
	return nil
}

// =============================================================================
// Choices
// =============================================================================

// addChoice adds a choice to the current page. Arguments are the target
// and the summary; missing ones are asked for, and an empty answer cancels.
func (s *session) addChoice(args []string) error {
	var target, summary string
	if len(args) >= 2 {
		target, summary = args[0], strings.Join(args[1:], " ")
	} else {
		printNewline()
		printInfo("Adding a new choice!")
		var err error
		if summary, err = ask(s.rl, "Summary"); err != nil || summary == "" {
			return err
		}
		if len(args) == 1 {
			target = args[0]
		} else if target, err = ask(s.rl, "Target Page Number"); err != nil || target == "" {
			return err
		}
	}

	id, err := parsePageArg(target)
	if err != nil {
		return err
	}
	if _, err := s.page.AddChoice(id, summary); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// deleteChoice removes a choice from the current page.
func (s *session) deleteChoice(args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	} else {
		printNewline()
		printInfo("Select a choice to delete:")
		for _, ch := range s.page.Choices() {
			fmt.Fprintf(stdout, "  [%s] %s\n", ch.Target, ch.Summary)
		}
		printNewline()
		var err error
		if target, err = ask(s.rl, "Choice to delete (enter to cancel)"); err != nil || target == "" {
			return err
		}
	}

	id, err := parsePageArg(target)
	if err != nil {
		return err
	}
	if err := s.page.DeleteChoice(id); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// =============================================================================
// Characters
// =============================================================================

// changeCharacter picks a character and gives it the current page.
func (s *session) changeCharacter() error {
	name, err := s.pickCharacter()
	if err != nil {
		return err
	}
	if err := s.book.SetPageCharacter(s.page.ID(), name); err != nil {
		return err
	}
	s.char = name
	s.dirty = true
	return nil
}

// pickCharacter selects an existing character or adds a new one, and
// returns its name.
func (s *session) pickCharacter() (string, error) {
	rows := characterRows(s.book)

	var (
		idx int
		err error
	)
	if s.pick != nil {
		idx, err = s.pickFullScreen(rows)
	} else {
		idx, err = s.pickByNumber(rows)
	}
	if err != nil {
		return "", err
	}

	if idx < len(rows) {
		name := rows[idx].Name
		printSuccess("Picked %q as the current character", name)
		return name, nil
	}

	name, err := ask(s.rl, "New Character Name")
	if err != nil {
		return "", err
	}
	ch, err := s.book.AddCharacterObj(s.cli.newCharacter(name))
	if err != nil {
		return "", fmt.Errorf("unable to add new character: %w", err)
	}
	s.dirty = true
	printSuccess("Picked %q as the current character", ch.Name)
	return ch.Name, nil
}

// pickFullScreen runs the bubbletea picker. The line reader is closed while
// the picker owns the terminal and reopened afterwards.
func (s *session) pickFullScreen(rows []CharacterRow) (int, error) {
	_ = s.rl.Close()
	idx, pickErr := s.pick(rows, s.char)

	history := s.cli.cfg.Shell.HistoryFile
	if history == "" {
		history = config.DefaultHistoryFile()
	}
	rl, err := s.cli.openReader("> ", history)
	if err != nil {
		return 0, err
	}
	s.rl = rl
	return idx, pickErr
}

// pickByNumber lists the characters and reads a number from the prompt.
func (s *session) pickByNumber(rows []CharacterRow) (int, error) {
	printNewline()
	fmt.Fprintln(stdout, "Current Characters:")
	def := 1
	for i, r := range rows {
		mark := ""
		if r.Name == s.char || (s.char == "" && i == 0) {
			mark = " (*)"
			def = i + 1
		}
		fmt.Fprintf(stdout, "  [%d] %s%s\n", i+1, r.Name, mark)
	}
	if len(rows) == 0 {
		fmt.Fprintf(stdout, "  [1] %s (*)\n", newCharacterLabel)
	} else {
		fmt.Fprintf(stdout, "  [%d] %s\n", len(rows)+1, newCharacterLabel)
	}
	printNewline()

	answer, err := ask(s.rl, fmt.Sprintf("Switch to character number [%d]", def))
	if err != nil {
		return 0, err
	}
	n := def
	if answer != "" {
		if n, err = strconv.Atoi(answer); err != nil {
			return 0, errs.New(errs.ErrCodeInvalidInput, "please input a valid number")
		}
	}
	if n < 1 || n > len(rows)+1 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "please input a number from 1 to %d", len(rows)+1)
	}
	return n - 1, nil
}

// =============================================================================
// Saving
// =============================================================================

func (s *session) save() error {
	if err := s.cli.saveBook(s.book); err != nil {
		return err
	}
	s.dirty = false
	printSuccess("Saved %s", s.cli.bookPath)
	return nil
}

// quit offers to save unsaved changes.
func (s *session) quit() error {
	if !s.dirty {
		return nil
	}
	printNewline()
	ok, err := askYesNo(s.rl, "Save before quitting", true)
	if err != nil || !ok {
		return err
	}
	return s.save()
}

// =============================================================================
// Helpers
// =============================================================================

// pageArg takes a page id from args, or asks for one.
func (s *session) pageArg(args []string, prompt string) (book.PageID, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		printNewline()
		var err error
		if raw, err = ask(s.rl, prompt); err != nil {
			return book.PageID{}, err
		}
	}
	return parsePageArg(raw)
}

// isPageNumber reports whether s is a bare page number.
func isPageNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func printShellHelp() {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(22)
	printNewline()
	for _, line := range [][2]string{
		{"## / p <page>", "switch to a page, creating it if needed"},
		{"a [target summary]", "add a choice to this page"},
		{"d [target]", "delete a choice from this page"},
		{"c", "pick the character of this page"},
		{"x <page>", "delete another page"},
		{"u [summary]", "replace this page's summary"},
		{"t / e", "toggle canonical / ending"},
		{"i <page>", "reserve or release an unwritten page id"},
		{"l / m", "list pages / missing pages and unwritten targets"},
		{"s / q", "save / quit"},
	} {
		fmt.Fprintln(stdout, keyStyle.Render(line[0])+" "+StyleValue.Render(line[1]))
	}
	printDetail(`Quote text with spaces: a 12 "Climb the wall"`)
}
