package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const watchDebounce = 100 * time.Millisecond

// watch validates once, then again after every write to the spec or data file.
// Parent directories are watched because editors often replace files on save.
func (c *cli) watch(cmd *cobra.Command, opts *validateOptions) error {
	if opts.data == "" || opts.data == "-" {
		return errors.New("--watch needs --data to name a file")
	}
	logger, err := c.app.Logger()
	if err != nil {
		return err
	}

	files := map[string]bool{}
	for _, path := range []string{c.specPath(opts), opts.data} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		files[abs] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for path := range files {
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}

	rerun := func() {
		if _, err := c.validate(cmd, opts); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
	}
	rerun()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			rerun()
		}
	}
}
