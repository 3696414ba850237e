package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minicpp/minicpp/pkg/frontend"
)

func runDriver(t *testing.T, args ...string) (stdout, stderr string, status int) {
	t.Helper()
	var out, errOut bytes.Buffer
	status = run(args, &out, &errOut)
	return out.String(), errOut.String(), status
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSampleSources(t *testing.T) {
	chdir(t, "../../tests")
	tests := []struct {
		file   string
		status int
		stderr string
	}{
		{"quicksort.cpp", 0, ""},
		{"strings.cpp", 0, ""},
		{"scenario_assign.cpp", 0, ""},
		{"decimal_points.cpp", 1, `File "decimal_points.cpp" [1:4]: error: too many decimal points in number`},
		{"undeclared.cpp", 1, `File "undeclared.cpp" [4:9]: error: Variable x using before declaration.`},
		{"redeclared_function.cpp", 1, `File "redeclared_function.cpp" [2:5]: error: Redeclaration of variable f.`},
		{"break_outside.cpp", 1, `File "break_outside.cpp" [6:9]: error: break is not available in this context`},
		{"undefined.cpp", 1, `File "undefined.cpp" [5:9]: error: Variable y is used before it is defined.`},
		{"div_zero.cpp", 1, `File "div_zero.cpp" [1:14]: error: division by zero.`},
		{"arguments.cpp", 1, `File "arguments.cpp" [20:13]: error: too few arguments to function average`},
		{"index_range.cpp", 1, `File "index_range.cpp" [4:11]: error: index 4 is out of range for array table of size 4.`},
		{"missing_iostream.cpp", 1, `File "missing_iostream.cpp" [5:5]: error: iostream library required.`},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			stdout, stderr, status := runDriver(t, tt.file)
			if status != tt.status {
				t.Errorf("exit status = %d, want %d", status, tt.status)
			}
			want := tt.stderr
			if want != "" {
				want += "\n"
			}
			if diff := cmp.Diff(want, stderr); diff != "" {
				t.Errorf("stderr mismatch (-want +got):\n%s", diff)
			}
			if stdout != "" {
				t.Errorf("unexpected stdout %q", stdout)
			}
		})
	}
}

func TestCaretFeature(t *testing.T) {
	chdir(t, "../../tests")
	_, stderr, status := runDriver(t, "-Fcaret", "div_zero.cpp")
	want := "File \"div_zero.cpp\" [1:14]: error: division by zero.\n" +
		"  int a = 10 / 0;\n" +
		"               ^\n"
	if status != 1 {
		t.Errorf("exit status = %d, want 1", status)
	}
	if diff := cmp.Diff(want, stderr); diff != "" {
		t.Errorf("stderr mismatch (-want +got):\n%s", diff)
	}
}

func TestWarningSwitches(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, "shadow.cpp", "int a;\nint main()\n{\n    int a = 1;\n    return a;\n}\n")
	writeFile(t, "empty.cpp", "int main()\n{\n    while (1 > 0) ;\n    return 0;\n}\n")
	shadow := "shadow.cpp:4:9: warning: declaration of 'a' shadows a previous declaration [-Wshadow]\n"
	empty := "empty.cpp:3:5: warning: while loop has an empty body [-Wempty-body]\n"

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"shadow off by default", []string{"shadow.cpp"}, ""},
		{"all", []string{"-Wall", "shadow.cpp"}, shadow},
		{"all minus one", []string{"-Wall", "-Wno-shadow", "shadow.cpp"}, ""},
		{"empty body on by default", []string{"empty.cpp"}, empty},
		{"none", []string{"-Wno-all", "empty.cpp"}, ""},
		{"none plus one", []string{"-Wno-all", "-Wempty-body", "empty.cpp"}, empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, status := runDriver(t, tt.args...)
			if status != 0 {
				t.Errorf("exit status = %d, want 0", status)
			}
			if diff := cmp.Diff(tt.stderr, stderr); diff != "" {
				t.Errorf("stderr mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDump(t *testing.T) {
	chdir(t, "../../tests")
	stdout, stderr, status := runDriver(t, "--dump", "literals", "-d", "variables", "--format=json", "scenario_assign.cpp")
	if status != 0 || stderr != "" {
		t.Fatalf("exit status = %d, stderr = %q", status, stderr)
	}
	var snap frontend.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatalf("decoding dump: %v\n%s", err, stdout)
	}
	if diff := cmp.Diff([]frontend.LiteralView{{ID: 0, Kind: "int", Text: "5"}}, snap.Literals); diff != "" {
		t.Errorf("literals mismatch (-want +got):\n%s", diff)
	}
	var names []string
	for _, v := range snap.Variables {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"iostream", "std", "x"}, names); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if snap.Lexemes != nil || snap.Tree != nil {
		t.Error("sections that were not requested were dumped")
	}

	stdout, _, status = runDriver(t, "-d", "all", "-f", "text", "scenario_assign.cpp")
	if status != 0 {
		t.Fatalf("exit status = %d", status)
	}
	for _, want := range []string{"LEXEMES", "LITERALS", "VARIABLES", "TREE"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("text dump lacks %s", want)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, "div.cpp", "int a = 10 / 0;\n")

	if _, stderr, status := runDriver(t, "div.cpp"); status != 1 || !strings.Contains(stderr, "division by zero.") {
		t.Fatalf("without settings: status %d, stderr %q", status, stderr)
	}

	writeFile(t, ".minicpp.yaml", "features:\n  div-zero-check: false\n")
	if _, stderr, status := runDriver(t, "div.cpp"); status != 0 || stderr != "" {
		t.Errorf("discovered settings not applied: status %d, stderr %q", status, stderr)
	}
	if _, _, status := runDriver(t, "-Fdiv-zero-check", "div.cpp"); status != 1 {
		t.Error("command-line switch must override the settings file")
	}

	writeFile(t, filepath.Join(dir, "broken.toml"), "[features]\nteleport = true\n")
	_, stderr, status := runDriver(t, "--config", "broken.toml", "div.cpp")
	if status != 1 || !strings.HasPrefix(stderr, "minicpp: error: ") {
		t.Errorf("bad settings file: status %d, stderr %q", status, stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	chdir(t, t.TempDir())
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", nil, "minicpp: error: exactly one input file is required\n"},
		{"two inputs", []string{"a.cpp", "b.cpp"}, "minicpp: error: exactly one input file is required\n"},
		{"unknown flag", []string{"--bogus", "a.cpp"}, "unknown flag: --bogus\n"},
		{"bad section", []string{"-d", "tokens", "a.cpp"}, "minicpp: error: unknown dump section 'tokens'"},
		{"bad format", []string{"-f", "xml", "a.cpp"}, "minicpp: error: unknown dump format 'xml'\n"},
		{"missing file", []string{"a.cpp"}, "minicpp: error: could not read file 'a.cpp'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, status := runDriver(t, tt.args...)
			if status != 1 {
				t.Errorf("exit status = %d, want 1", status)
			}
			if !strings.HasPrefix(stderr, tt.want) {
				t.Errorf("stderr = %q, want prefix %q", stderr, tt.want)
			}
		})
	}
}

func TestHelpAndVerbose(t *testing.T) {
	stdout, _, status := runDriver(t, "--help")
	if status != 0 {
		t.Errorf("--help exit status = %d", status)
	}
	for _, want := range []string{"Usage: minicpp [options] <input.cpp>", "--Wall", "-W<warning>", "-F<feature>", "shadow", "caret"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help lacks %q", want)
		}
	}

	chdir(t, "../../tests")
	_, stderr, status := runDriver(t, "-v", "quicksort.cpp")
	if status != 0 {
		t.Fatalf("exit status = %d, stderr %q", status, stderr)
	}
	if !strings.Contains(stderr, "minicpp: info: analyzing quicksort.cpp") || !strings.Contains(stderr, "unused pruned") {
		t.Errorf("verbose output = %q", stderr)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", abs)
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
