package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LoadDir evaluates every .js file in the given directory in name order.
// Individual script failures are reported and do not stop loading the rest.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read scripts directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		m.LoadFile(filepath.Join(dir, name))
	}
	return nil
}

// LoadFile evaluates a single script file. Failures are reported through
// the diagnostics channel.
func (m *Manager) LoadFile(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		m.ThrowError("failed to read script %s: %v", filepath.Base(path), err)
		return
	}
	m.logger.Info().Str("script", filepath.Base(path)).Msg("loading script")
	_, _ = m.Evaluate(filepath.Base(path), string(src))
}

// Watch re-evaluates scripts when files in the directory change. It blocks
// until the context is cancelled. Reloads are funneled through Submit so
// the runtime is only touched from the event-dispatch goroutine.
func (m *Manager) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Editors tend to fire several events per save; coalesce per path.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".js") {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				pending[event.Name] = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn().Err(err).Msg("script watcher error")
		case now := <-ticker.C:
			for path, t := range pending {
				if now.Sub(t) < 150*time.Millisecond {
					continue
				}
				delete(pending, path)
				p := path
				m.Submit(func() { m.LoadFile(p) })
			}
		}
	}
}
