// Package repl implements the interactive command loop: parsing one line
// of input into a Statement (parser.go) and driving the read-eval-print
// loop itself (repl.go).
package repl

import (
	"fmt"
	"strconv"
	"strings"

	"flatbase/row"
)

// StatementKind distinguishes the recognized statement forms.
type StatementKind int

const (
	StatementInsert StatementKind = iota
	StatementSelect
)

// Statement is a fully parsed, ready-to-execute command.
type Statement struct {
	Kind StatementKind
	Row  row.Row
}

// ParseError distinguishes a syntax mistake (bad shape, negative id) from
// a sizing violation (username/email too long, missing arguments), since
// the two are reported with different diagnostics upstream.
type ParseError struct {
	Sizing bool
	msg    string
}

func (e *ParseError) Error() string { return e.msg }

func syntaxErrorf(format string, args ...any) *ParseError {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

func sizingErrorf(format string, args ...any) *ParseError {
	return &ParseError{Sizing: true, msg: fmt.Sprintf(format, args...)}
}

// ParseStatement recognizes "insert <id> <username> <email>" and
// "select"; any other input is reported as an unrecognized statement.
func ParseStatement(line string) (Statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Statement{}, syntaxErrorf("empty statement")
	}

	switch fields[0] {
	case "select":
		return Statement{Kind: StatementSelect}, nil
	case "insert":
		return parseInsert(fields[1:])
	default:
		return Statement{}, syntaxErrorf("unrecognized keyword at start of %q", line)
	}
}

func parseInsert(args []string) (Statement, error) {
	if len(args) < 3 {
		return Statement{}, sizingErrorf("insert requires 3 arguments: id, username, email")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return Statement{}, syntaxErrorf("id must be an integer, got %q", args[0])
	}
	if id < 0 {
		return Statement{}, syntaxErrorf("id must be a non-negative integer, got %d", id)
	}

	username, email := args[1], args[2]
	if len(username) > row.MaxUsernameLen {
		return Statement{}, sizingErrorf("username exceeds %d bytes", row.MaxUsernameLen)
	}
	if len(email) > row.MaxEmailLen {
		return Statement{}, sizingErrorf("email exceeds %d bytes", row.MaxEmailLen)
	}

	return Statement{
		Kind: StatementInsert,
		Row:  row.Row{ID: uint32(id), Username: username, Email: email},
	}, nil
}
