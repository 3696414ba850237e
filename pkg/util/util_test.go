package util

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/token"
)

func TestErrorCategories(t *testing.T) {
	lx := token.Lexeme{Line: 3, Column: 7}
	tests := []struct {
		err      error
		parser   bool
		semantic bool
		text     string
	}{
		{NewLexicalError("a.cpp", 1, 2, "unknown character"), false, false, `File "a.cpp" [1:2]: error: unknown character`},
		{NewExpectedError("a.cpp", lx, "';'"), true, false, `File "a.cpp" [3:7]: error: ';' was expected here.`},
		{NewDoubleDeclarationError("a.cpp", lx, "x"), true, false, `File "a.cpp" [3:7]: error: Redeclaration of variable x.`},
		{NewDivisionByZeroError("a.cpp", lx), false, true, `File "a.cpp" [3:7]: error: division by zero.`},
		{NewArrayIndexError("a.cpp", lx, "t", 5, 4), false, true, `File "a.cpp" [3:7]: error: index 5 is out of range for array t of size 4.`},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if tt.err.Error() != tt.text {
				t.Errorf("Error() = %q", tt.err.Error())
			}
			var perr *ParserError
			var serr *SemanticError
			if got := errors.As(tt.err, &perr); got != tt.parser {
				t.Errorf("errors.As(ParserError) = %v", got)
			}
			if got := errors.As(tt.err, &serr); got != tt.semantic {
				t.Errorf("errors.As(SemanticError) = %v", got)
			}
			wrapped := fmt.Errorf("analysis: %w", tt.err)
			if d, ok := AsDiagnostic(wrapped); !ok || d.Error() != tt.text {
				t.Errorf("AsDiagnostic(wrapped) = %v, %v", d, ok)
			}
		})
	}
}

func TestSourceLine(t *testing.T) {
	src := &SourceFileRecord{Name: "a.cpp", Content: []rune("first\r\nsecond\n\nfourth")}
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{1, "first", true},
		{2, "second", true},
		{3, "", true},
		{4, "fourth", true},
		{5, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		got, ok := src.Line(tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Line(%d) = %q, %v; want %q, %v", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPrintError(t *testing.T) {
	src := &SourceFileRecord{Name: "a.cpp", Content: []rune("int a = 10 / 0;\n")}
	err := NewDivisionByZeroError("a.cpp", token.Lexeme{Line: 1, Column: 14})
	cfg := config.NewConfig()

	var buf bytes.Buffer
	PrintError(&buf, cfg, src, err)
	if diff := cmp.Diff("File \"a.cpp\" [1:14]: error: division by zero.\n", buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	cfg.SetFeature(config.FeatCaret, true)
	PrintError(&buf, cfg, src, err)
	want := "File \"a.cpp\" [1:14]: error: division by zero.\n" +
		"  int a = 10 / 0;\n" +
		"               ^\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("caret output mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	PrintError(&buf, cfg, src, errors.New("plain failure"))
	if diff := cmp.Diff("error: plain failure\n", buf.String()); diff != "" {
		t.Errorf("plain error mismatch (-want +got):\n%s", diff)
	}
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewConfig()
	cfg.Stderr = &buf
	src := &SourceFileRecord{Name: "a.cpp", Content: []rune("while (x) ;\n")}
	lx := token.Lexeme{Line: 1, Column: 1, Len: 5}

	Warn(cfg, config.WarnEmptyBody, src, lx, "%s loop has an empty body", "while")
	if diff := cmp.Diff("a.cpp:1:1: warning: while loop has an empty body [-Wempty-body]\n", buf.String()); diff != "" {
		t.Errorf("warning mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	cfg.SetFeature(config.FeatCaret, true)
	Warn(cfg, config.WarnEmptyBody, src, lx, "empty")
	if want := "  while (x) ;\n  ^~~~~\n"; !bytes.HasSuffix(buf.Bytes(), []byte(want)) {
		t.Errorf("caret missing from %q", buf.String())
	}

	buf.Reset()
	Warn(cfg, config.WarnShadow, src, lx, "off by default")
	if buf.Len() != 0 {
		t.Errorf("disabled warning printed %q", buf.String())
	}
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	Info(&buf, false, "hidden")
	Info(&buf, true, "analyzing %s", "a.cpp")
	if diff := cmp.Diff("minicpp: info: analyzing a.cpp\n", buf.String()); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}
}
