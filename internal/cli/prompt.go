package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	errs "github.com/apocalyptech/choosable/pkg/errors"
)

// lineReader is the part of *readline.Instance used for prompting.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// openReader starts a terminal line reader. historyFile may be empty.
func (c *CLI) openReader(prompt, historyFile string) (lineReader, error) {
	if c.newReader != nil {
		return c.newReader(prompt, historyFile)
	}
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o755); err != nil {
			c.Logger.Debug("history disabled", "file", historyFile, "err", err)
			historyFile = ""
		}
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return rl, nil
}

// confirm asks a yes/no question on the terminal. Any failure to read an
// answer counts as no.
func (c *CLI) confirm(question string, def bool) bool {
	rl, err := c.openReader("", "")
	if err != nil {
		c.Logger.Debug("cannot prompt", "err", err)
		return false
	}
	defer rl.Close()
	ok, err := askYesNo(rl, question, def)
	return err == nil && ok
}

// ask prompts for one line of input and returns it trimmed. Ctrl+C is
// reported as a CANCELED error; end of input is returned as io.EOF.
func ask(rl lineReader, prompt string) (string, error) {
	rl.SetPrompt(prompt + ": ")
	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errs.New(errs.ErrCodeCanceled, "canceled")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askYesNo asks a yes/no question; an empty answer takes def.
func askYesNo(rl lineReader, question string, def bool) (bool, error) {
	opts := "y|N"
	if def {
		opts = "Y|n"
	}
	rl.SetPrompt(fmt.Sprintf("%s [%s]? ", question, opts))
	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return false, errs.New(errs.ErrCodeCanceled, "canceled")
	}
	if err != nil {
		return false, err
	}
	return parseYesNo(line, def), nil
}

// parseYesNo reads an answer by its first letter.
func parseYesNo(s string, def bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s[0] == 'y'
}

// parseArgs splits a shell line into words. Double quotes group words
// containing spaces.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return args
}
