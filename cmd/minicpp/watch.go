package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/minicpp/minicpp/pkg/util"
)

// watch runs the analysis, then again on every write to the input file.
// The parent directory is watched so editors that replace the file by
// rename keep being followed. Reports identical to the previous
// successful run are suppressed.
func (r *runner) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var last uint64
	analyze := func() {
		prog, err := r.run()
		if err != nil {
			last = 0
			return
		}
		if fp := prog.Fingerprint(); fp != last {
			if r.report(prog) == nil {
				fmt.Fprintf(r.stderr, "%s: ok\n", r.path)
			}
			last = fp
		}
	}
	analyze()
	util.Info(r.stderr, r.opts.verbose, "watching %s", r.path)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				util.Info(r.stderr, r.opts.verbose, "%s changed", r.path)
				analyze()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(r.stderr, "minicpp: watch error: %v\n", err)
		}
	}
}
