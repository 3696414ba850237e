package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/cli"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/frontend"
	"github.com/minicpp/minicpp/pkg/util"
)

// errFailed means the diagnostic was already printed
var errFailed = errors.New("analysis failed")

type options struct {
	configPath string
	dump       []string
	format     string
	watch      bool
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the driver with args and returns the exit status
func run(args []string, stdout, stderr io.Writer) int {
	app := cli.NewApp("minicpp")
	app.Synopsis = "[options] <input.cpp>"
	app.Description = "Front end for a small C++ subset. Runs the lexical analyzer, the tree parser and the semantic analyzer over one source file and reports the first error found."
	app.Authors = []string{"minicpp contributors"}
	app.Repository = "<https://github.com/minicpp/minicpp>"
	app.Stdout, app.Stderr = stdout, stderr

	var opts options
	fs := app.FlagSet
	fs.String(&opts.configPath, "config", "c", "", "Read feature and warning settings from <file> (TOML or YAML).", "file")
	fs.List(&opts.dump, "dump", "d", nil, "Print the given sections after a successful analysis: lexemes, literals, variables, tree or all.", "sections")
	fs.String(&opts.format, "format", "f", "text", "Dump format: text, json or yaml.", "format")
	fs.Bool(&opts.watch, "watch", "w", false, "Analyze again every time the input file is written.")
	fs.Bool(&opts.verbose, "verbose", "v", false, "Print progress information.")

	cfg := config.NewConfig()
	cfg.Stderr = stderr
	switches := cfg.SetupFlagGroups(fs)

	app.Action = func(args []string) error {
		if len(args) != 1 {
			fmt.Fprintln(stderr, "minicpp: error: exactly one input file is required")
			return errFailed
		}
		path := args[0]

		settings := opts.configPath
		if settings == "" {
			settings = config.FindDefault(".")
		}
		if settings != "" {
			util.Info(stderr, opts.verbose, "loading settings from %s", settings)
			if err := cfg.LoadFile(settings); err != nil {
				fmt.Fprintf(stderr, "minicpp: error: %v\n", err)
				return errFailed
			}
		}
		if err := cfg.ApplyFlagGroups(switches); err != nil {
			fmt.Fprintf(stderr, "minicpp: error: %v\n", err)
			return errFailed
		}

		sections, err := frontend.ParseSections(strings.Join(opts.dump, ","))
		if err != nil {
			fmt.Fprintf(stderr, "minicpp: error: %v\n", err)
			return errFailed
		}
		switch opts.format {
		case "text", "json", "yaml":
		default:
			fmt.Fprintf(stderr, "minicpp: error: unknown dump format '%s'\n", opts.format)
			return errFailed
		}

		r := &runner{path: path, cfg: cfg, sections: sections, opts: opts, stdout: stdout, stderr: stderr}
		if opts.watch {
			return r.watch()
		}
		prog, err := r.run()
		if err != nil {
			return errFailed
		}
		return r.report(prog)
	}

	if err := app.Run(args); err != nil {
		return 1
	}
	return 0
}

type runner struct {
	path     string
	cfg      *config.Config
	sections []string
	opts     options
	stdout   io.Writer
	stderr   io.Writer
}

// run analyzes the input once; a failure has already been printed to stderr
func (r *runner) run() (*frontend.Program, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		fmt.Fprintf(r.stderr, "minicpp: error: could not read file '%s': %v\n", r.path, err)
		return nil, err
	}
	src := []rune(string(content))
	util.Info(r.stderr, r.opts.verbose, "analyzing %s (%d bytes)", r.path, len(content))

	prog, err := frontend.Analyze(r.path, src, r.cfg)
	if err != nil {
		util.PrintError(r.stderr, r.cfg, &util.SourceFileRecord{Name: r.path, Content: src}, err)
		return nil, err
	}
	util.Info(r.stderr, r.opts.verbose, "%d lexemes, %d literals, %d variables of %d identifiers (%d unused pruned), %d tree nodes",
		len(prog.Lexemes), prog.Literals.Len(), len(prog.Variables.Entries()), prog.Variables.Cap(), prog.Pruned,
		ast.Count(prog.Root, func(*ast.Node) bool { return true }))
	return prog, nil
}

// report prints the requested dump sections
func (r *runner) report(prog *frontend.Program) error {
	if len(r.sections) == 0 {
		return nil
	}
	if err := prog.Dump(r.stdout, r.sections, r.opts.format); err != nil {
		fmt.Fprintf(r.stderr, "minicpp: error: %v\n", err)
		return err
	}
	return nil
}
