package frontend

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/util"
	"gopkg.in/yaml.v3"
)

func quietConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Stderr = io.Discard
	return cfg
}

const small = `#include <iostream>
using namespace std;
int main()
{
    int x = 2;
    cout << "x = " << x << endl;
    return 0;
}
`

func TestAnalyzeQuicksort(t *testing.T) {
	prog, err := AnalyzeFile("../../tests/quicksort.cpp", quietConfig())
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	var funcs []string
	for name := range prog.Environment.Functions {
		funcs = append(funcs, name)
	}
	sort.Strings(funcs)
	if diff := cmp.Diff([]string{"main", "printArray", "quickSort"}, funcs); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
	if prog.Pruned == 0 {
		t.Error("expected forward slots from in-body identifier uses to be pruned")
	}
	for _, e := range prog.Variables.Entries() {
		if tables.IsUnknown(e.Type) {
			t.Errorf("variable %s (#%d) left untyped after pruning", e.Name, e.ID)
		}
	}
	if !prog.Environment.Libraries["iostream"] || !prog.Environment.Namespaces["std"] {
		t.Error("iostream and std should be recorded")
	}
}

func TestAnalyzeFailsFast(t *testing.T) {
	src := "int main() { int a = 1; return a / 0; }"
	prog, err := Analyze("bad.cpp", []rune(src), quietConfig())
	if prog != nil {
		t.Error("a failed analysis must not return a program")
	}
	var divErr *util.DivisionByZeroError
	if !errors.As(err, &divErr) {
		t.Fatalf("got %v, want DivisionByZeroError", err)
	}
	if divErr.Line != 1 || divErr.Column != 36 {
		t.Errorf("position = %d:%d, want 1:36", divErr.Line, divErr.Column)
	}

	if _, err := AnalyzeFile("does-not-exist.cpp", nil); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("AnalyzeFile(missing) = %v, want fs.ErrNotExist", err)
	}
}

func TestText(t *testing.T) {
	prog, err := Analyze("small.cpp", []rune(small), quietConfig())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var texts []string
	for i := range prog.Lexemes[:9] {
		texts = append(texts, prog.Text(&prog.Lexemes[i]))
	}
	want := []string{"#include", "<", "iostream", ">", "using", "namespace", "std", ";", "int"}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("lexeme text mismatch (-want +got):\n%s", diff)
	}
	if got := prog.Text(nil); got != "" {
		t.Errorf("Text(nil) = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Analyze("small.cpp", []rune(small), quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Analyze("other-name.cpp", []rune(small), quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical sources should fingerprint equally")
	}
	c, err := Analyze("small.cpp", []rune(strings.Replace(small, "x = 2", "x = 3", 1)), quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("changing a literal should change the fingerprint")
	}
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{"tree", []string{"tree"}, false},
		{" tree , lexemes", []string{"tree", "lexemes"}, false},
		{"literals,all", Sections, false},
		{"tree,tokens", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseSections(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSections(%q) error = %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseSections(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDump(t *testing.T) {
	prog, err := Analyze("small.cpp", []rune(small), quietConfig())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := prog.Dump(&buf, []string{SectionLiterals, SectionVariables}, "json"); err != nil {
			t.Fatal(err)
		}
		var snap Snapshot
		if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
			t.Fatalf("decoding json dump: %v", err)
		}
		if snap.Source != "small.cpp" || snap.Lexemes != nil || snap.Tree != nil {
			t.Errorf("unexpected sections in %+v", snap)
		}
		wantLiterals := []LiteralView{
			{ID: 0, Kind: "int", Text: "2"},
			{ID: 1, Kind: "string", Text: "x = "},
			{ID: 2, Kind: "int", Text: "0"},
		}
		if diff := cmp.Diff(wantLiterals, snap.Literals); diff != "" {
			t.Errorf("literals mismatch (-want +got):\n%s", diff)
		}
		var names []string
		for _, v := range snap.Variables {
			names = append(names, v.Name)
		}
		for _, name := range []string{"iostream", "std", "main", "x"} {
			if !strings.Contains(strings.Join(names, " "), name) {
				t.Errorf("variable %s missing from %v", name, names)
			}
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := prog.Dump(&buf, []string{SectionTree}, "yaml"); err != nil {
			t.Fatal(err)
		}
		var snap Snapshot
		if err := yaml.Unmarshal(buf.Bytes(), &snap); err != nil {
			t.Fatalf("decoding yaml dump: %v", err)
		}
		if snap.Tree == nil || snap.Tree.Type != "CodeBlock" || len(snap.Tree.Children) != 3 {
			t.Errorf("unexpected tree root %+v", snap.Tree)
		}
		if snap.Fingerprint == "" {
			t.Error("fingerprint missing")
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := prog.Dump(&buf, Sections, "text"); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"LEXEMES", "LITERALS", "VARIABLES", "TREE", "\"x = \"", "FunctionDeclaration"} {
			if !strings.Contains(out, want) {
				t.Errorf("text dump lacks %q", want)
			}
		}
	})

	if err := prog.Dump(io.Discard, Sections, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}
