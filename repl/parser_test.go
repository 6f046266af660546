package repl

import (
	"strings"
	"testing"

	"flatbase/row"
)

func TestParseSelect(t *testing.T) {
	stmt, err := ParseStatement("select")
	if err != nil {
		t.Fatalf("ParseStatement: %v", err)
	}
	if stmt.Kind != StatementSelect {
		t.Fatalf("Kind = %v, want StatementSelect", stmt.Kind)
	}
}

func TestParseInsert(t *testing.T) {
	stmt, err := ParseStatement("insert 1 hiro hiro@example.com")
	if err != nil {
		t.Fatalf("ParseStatement: %v", err)
	}
	if stmt.Kind != StatementInsert {
		t.Fatalf("Kind = %v, want StatementInsert", stmt.Kind)
	}
	want := row.Row{ID: 1, Username: "hiro", Email: "hiro@example.com"}
	if stmt.Row != want {
		t.Fatalf("Row = %+v, want %+v", stmt.Row, want)
	}
}

func TestParseInsertNegativeIDIsSyntaxError(t *testing.T) {
	_, err := ParseStatement("insert -1 hiro hiro@example.com")
	assertSyntaxError(t, err)
}

func TestParseInsertNonNumericIDIsSyntaxError(t *testing.T) {
	_, err := ParseStatement("insert abc hiro hiro@example.com")
	assertSyntaxError(t, err)
}

func TestParseInsertTooFewArgsIsSizingError(t *testing.T) {
	_, err := ParseStatement("insert 1 hiro")
	assertSizingError(t, err)
}

func TestParseInsertUsernameTooLongIsSizingError(t *testing.T) {
	line := "insert 1 " + strings.Repeat("u", row.MaxUsernameLen+1) + " hiro@example.com"
	_, err := ParseStatement(line)
	assertSizingError(t, err)
}

func TestParseInsertEmailTooLongIsSizingError(t *testing.T) {
	line := "insert 1 hiro " + strings.Repeat("e", row.MaxEmailLen+1)
	_, err := ParseStatement(line)
	assertSizingError(t, err)
}

func TestParseUnrecognizedStatement(t *testing.T) {
	_, err := ParseStatement("delete 1")
	assertSyntaxError(t, err)
}

func assertSyntaxError(t *testing.T, err error) {
	t.Helper()
	var perr *ParseError
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !asParseError(err, &perr) {
		t.Fatalf("expected a *ParseError, got %T: %v", err, err)
	}
	if perr.Sizing {
		t.Fatalf("expected a syntax error, got a sizing error: %v", perr)
	}
}

func assertSizingError(t *testing.T, err error) {
	t.Helper()
	var perr *ParseError
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !asParseError(err, &perr) {
		t.Fatalf("expected a *ParseError, got %T: %v", err, err)
	}
	if !perr.Sizing {
		t.Fatalf("expected a sizing error, got a syntax error: %v", perr)
	}
}

func asParseError(err error, target **ParseError) bool {
	if perr, ok := err.(*ParseError); ok {
		*target = perr
		return true
	}
	return false
}
