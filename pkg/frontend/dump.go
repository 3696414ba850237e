package frontend

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/token"
	"gopkg.in/yaml.v3"
)

// Dump sections
const (
	SectionLexemes   = "lexemes"
	SectionLiterals  = "literals"
	SectionVariables = "variables"
	SectionTree      = "tree"
)

// Sections lists every dump section in output order
var Sections = []string{SectionLexemes, SectionLiterals, SectionVariables, SectionTree}

type LexemeView struct {
	Kind   string `json:"kind" yaml:"kind"`
	Value  int    `json:"value" yaml:"value"`
	Text   string `json:"text" yaml:"text"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

type LiteralView struct {
	ID   int    `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
}

type VariableView struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	BlockID    int    `json:"blockId" yaml:"blockId"`
	BlockLevel int    `json:"blockLevel" yaml:"blockLevel"`
}

type NodeView struct {
	Type     string      `json:"type" yaml:"type"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Line     int         `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int         `json:"column,omitempty" yaml:"column,omitempty"`
	Children []*NodeView `json:"children,omitempty" yaml:"children,omitempty"`
}

// Snapshot is the serializable view of a Program
type Snapshot struct {
	Source      string         `json:"source" yaml:"source"`
	Fingerprint string         `json:"fingerprint" yaml:"fingerprint"`
	Lexemes     []LexemeView   `json:"lexemes,omitempty" yaml:"lexemes,omitempty"`
	Literals    []LiteralView  `json:"literals,omitempty" yaml:"literals,omitempty"`
	Variables   []VariableView `json:"variables,omitempty" yaml:"variables,omitempty"`
	Tree        *NodeView      `json:"tree,omitempty" yaml:"tree,omitempty"`
}

// ParseSections validates a comma-separated section list; "all" selects everything
func ParseSections(list string) ([]string, error) {
	var out []string
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		switch {
		case s == "":
			continue
		case s == "all":
			return Sections, nil
		case !isSection(s):
			return nil, fmt.Errorf("unknown dump section '%s' (want %s)", s, strings.Join(Sections, ", "))
		}
		out = append(out, s)
	}
	return out, nil
}

func isSection(s string) bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

func has(sections []string, s string) bool {
	for _, x := range sections {
		if x == s {
			return true
		}
	}
	return false
}

// Snapshot collects the requested sections
func (prog *Program) Snapshot(sections []string) *Snapshot {
	snap := &Snapshot{Source: prog.Source.Name, Fingerprint: fmt.Sprintf("%016x", prog.Fingerprint())}
	if has(sections, SectionLexemes) {
		for i := range prog.Lexemes {
			lx := &prog.Lexemes[i]
			snap.Lexemes = append(snap.Lexemes, LexemeView{
				Kind: lx.Kind.String(), Value: lx.Value, Text: prog.Text(lx), Line: lx.Line, Column: lx.Column,
			})
		}
	}
	if has(sections, SectionLiterals) {
		for _, e := range prog.Literals.Entries() {
			snap.Literals = append(snap.Literals, LiteralView{ID: e.ID, Kind: e.Kind.String(), Text: e.Text})
		}
	}
	if has(sections, SectionVariables) {
		for _, e := range prog.Variables.Entries() {
			snap.Variables = append(snap.Variables, VariableView{
				ID: e.ID, Name: e.Name, Type: e.Type.String(), BlockID: e.BlockID, BlockLevel: e.BlockLevel,
			})
		}
	}
	if has(sections, SectionTree) {
		snap.Tree = prog.nodeView(prog.Root)
	}
	return snap
}

func (prog *Program) nodeView(n *ast.Node) *NodeView {
	v := &NodeView{Type: n.Type.String()}
	if n.Lexeme != nil {
		v.Text, v.Line, v.Column = prog.Text(n.Lexeme), n.Lexeme.Line, n.Lexeme.Column
	}
	for _, c := range n.Children {
		v.Children = append(v.Children, prog.nodeView(c))
	}
	return v
}

// Dump writes the requested sections in text, json or yaml format
func (prog *Program) Dump(w io.Writer, sections []string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(prog.Snapshot(sections))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(prog.Snapshot(sections)); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return prog.dumpText(w, sections)
	}
	return fmt.Errorf("unknown dump format '%s'", format)
}

func (prog *Program) dumpText(w io.Writer, sections []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if has(sections, SectionLexemes) {
		fmt.Fprintln(tw, "LEXEMES\nline:col\tkind\tvalue\ttext")
		for i := range prog.Lexemes {
			lx := &prog.Lexemes[i]
			fmt.Fprintf(tw, "%d:%d\t%s\t%d\t%s\n", lx.Line, lx.Column, lx.Kind, lx.Value, prog.Text(lx))
		}
		fmt.Fprintln(tw)
	}
	if has(sections, SectionLiterals) {
		fmt.Fprintln(tw, "LITERALS\nid\tkind\ttext")
		for _, e := range prog.Literals.Entries() {
			fmt.Fprintf(tw, "%d\t%s\t%q\n", e.ID, e.Kind, e.Text)
		}
		fmt.Fprintln(tw)
	}
	if has(sections, SectionVariables) {
		fmt.Fprintln(tw, "VARIABLES\nid\tname\ttype\tblock")
		for _, e := range prog.Variables.Entries() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d:%d\n", e.ID, e.Name, e.Type, e.BlockID, e.BlockLevel)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if has(sections, SectionTree) {
		fmt.Fprintln(w, "TREE")
		ast.Fprint(w, prog.Root, func(lx *token.Lexeme) string { return prog.Text(lx) })
	}
	return nil
}
