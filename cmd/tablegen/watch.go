package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/tablegen/internal/config"
)

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := e.flags()
	var debounce time.Duration
	fs.DurationVar(&debounce, "debounce", 200*time.Millisecond, "Wait this long after the last change before regenerating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := e.setup(); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tablegen: watch: %w", err)
	}
	defer w.Close()

	if err := e.generate(ctx); err != nil {
		e.logger.Error("tablegen: generate failed", "error", err)
	}
	// Editors replace files by renaming, so the directories are watched
	// and events are filtered by name.
	files := e.watched()
	for dir := range dirs(files) {
		if err := w.Add(dir); err != nil {
			e.logger.Warn("tablegen: cannot watch directory", "dir", dir, "error", err)
		}
	}
	e.logger.Info("tablegen: watching", "files", len(files))

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !files[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			e.logger.Debug("tablegen: change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("tablegen: watcher error", "error", err)
		case <-timer.C:
			e.reload(ctx)
		}
	}
}

// reload reads the configuration again and regenerates. Failures are
// logged and the previous configuration is kept.
func (e *env) reload(ctx context.Context) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		e.logger.Error("tablegen: reload configuration", "error", err)
		return
	}
	if err := e.use(cfg); err != nil {
		e.logger.Error("tablegen: reload configuration", "error", err)
		return
	}
	if err := e.generate(ctx); err != nil {
		e.logger.Error("tablegen: generate failed", "error", err)
	}
}

// watched returns the absolute paths of the configuration and snapshot.
func (e *env) watched() map[string]bool {
	files := make(map[string]bool)
	for _, p := range []string{e.configPath, e.cfg.Generate.Snapshot} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			files[abs] = true
		}
	}
	return files
}

func dirs(files map[string]bool) map[string]bool {
	ds := make(map[string]bool, len(files))
	for f := range files {
		ds[filepath.Dir(f)] = true
	}
	return ds
}
