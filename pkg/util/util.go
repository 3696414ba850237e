package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/token"
	"golang.org/x/term"
)

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorReset  = "\033[0m"
)

// SourceFileRecord tracks the name and content of the file being analyzed
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Line returns the text of the 1-based line n, without its newline
func (s *SourceFileRecord) Line(n int) (string, bool) {
	if s == nil || n < 1 {
		return "", false
	}
	start := 0
	for i, r := range s.Content {
		if n <= 1 {
			break
		}
		if r == '\n' {
			n--
			start = i + 1
		}
	}
	if n > 1 {
		return "", false
	}
	end := len(s.Content)
	for i := start; i < len(s.Content); i++ {
		if s.Content[i] == '\n' {
			end = i
			break
		}
	}
	return strings.TrimRight(string(s.Content[start:end]), "\r"), true
}

// ColorEnabled reports whether w is a terminal that should get ANSI colors
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

// PrintCaret prints the source line and a caret under column, followed by
// a tilde run covering the rest of a multi-character lexeme
func PrintCaret(w io.Writer, src *SourceFileRecord, line, column, length int) {
	text, ok := src.Line(line)
	if !ok || column < 1 {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)
	marker := "^"
	if length > 1 {
		marker += strings.Repeat("~", length-1)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", column-1), paint(ColorEnabled(w), colorGreen, marker))
}

// PrintError renders err on w. With the caret feature on, the offending
// source line follows the message.
func PrintError(w io.Writer, cfg *config.Config, src *SourceFileRecord, err error) {
	d, ok := AsDiagnostic(err)
	if !ok {
		fmt.Fprintf(w, "%s %s\n", paint(ColorEnabled(w), colorRed, "error:"), err)
		return
	}
	fmt.Fprintln(w, d.Error())
	if cfg != nil && cfg.IsFeatureEnabled(config.FeatCaret) {
		PrintCaret(w, src, d.Line, d.Column, 1)
	}
}

// Warn prints a formatted warning if the corresponding warning is enabled
func Warn(cfg *config.Config, wt config.Warning, src *SourceFileRecord, lx token.Lexeme, format string, args ...any) {
	if cfg == nil || !cfg.IsWarningEnabled(wt) {
		return
	}
	w := cfg.Output()
	name := "<input>"
	if src != nil {
		name = src.Name
	}
	fmt.Fprintf(w, "%s:%d:%d: %s ", name, lx.Line, lx.Column, paint(ColorEnabled(w), colorYellow, "warning:"))
	fmt.Fprintf(w, format, args...)
	fmt.Fprintf(w, " [-W%s]\n", cfg.Warnings[wt].Name)
	if cfg.IsFeatureEnabled(config.FeatCaret) {
		PrintCaret(w, src, lx.Line, lx.Column, lx.Len)
	}
}

// Info prints a progress line when verbose output is on
func Info(w io.Writer, verbose bool, format string, args ...any) {
	if !verbose {
		return
	}
	fmt.Fprintf(w, "minicpp: info: "+format+"\n", args...)
}
