package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"flatbase/exec"
	"flatbase/logging"
	"flatbase/table"
)

// Run drives the interactive loop against t, reading lines until ".exit"
// or EOF. It returns nil on a clean ".exit", and a non-nil error only for
// conditions the caller should treat as fatal (readline setup or read
// failure, a failed table close, a failed tree dump).
func Run(t *table.Table, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "db > ",
		HistoryFile: "",
	})
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			logging.Repl.Info("received EOF, flushing and closing")
			return t.Close()
		}
		if err != nil {
			return fmt.Errorf("repl: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			done, err := handleMeta(line, t, out)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			continue
		}

		runStatement(line, t, out)
	}
}

// handleMeta processes a "." meta-command. done reports whether the loop
// should stop (".exit").
func handleMeta(line string, t *table.Table, out io.Writer) (done bool, err error) {
	switch line {
	case ".exit":
		logging.Repl.Info("received .exit, flushing and closing")
		if err := t.Close(); err != nil {
			return false, fmt.Errorf("repl: closing on exit: %w", err)
		}
		return true, nil
	case ".btree":
		dump, err := t.PrintTree()
		if err != nil {
			return false, fmt.Errorf("repl: tree dump: %w", err)
		}
		fmt.Fprint(out, dump)
		return false, nil
	default:
		fmt.Fprintf(out, "unrecognized command %q\n", line)
		return false, nil
	}
}

// runStatement parses and executes one non-meta line, reporting parse
// errors and duplicate-key rejections to out without aborting the loop.
func runStatement(line string, t *table.Table, out io.Writer) {
	stmt, err := ParseStatement(line)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Sizing {
			fmt.Fprintf(out, "sizing error: %s\n", perr.Error())
		} else {
			fmt.Fprintf(out, "syntax error: %s\n", err)
		}
		return
	}

	switch stmt.Kind {
	case StatementInsert:
		if err := exec.Insert(t, stmt.Row); err != nil {
			if errors.Is(err, exec.ErrDuplicateKey) {
				fmt.Fprintf(out, "error: duplicate key %d\n", stmt.Row.ID)
				return
			}
			logging.Repl.WithError(err).Fatal("insert failed")
		}
		fmt.Fprintln(out, "executed.")
	case StatementSelect:
		if err := exec.Select(t, out); err != nil {
			logging.Repl.WithError(err).Fatal("select failed")
		}
	}
}
