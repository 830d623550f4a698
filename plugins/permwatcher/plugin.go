// Package permwatcher reloads a hub's permissions when the permissions file
// changes on disk.
package permwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/xstore/pkg/hub"
	"github.com/bft-labs/xstore/pkg/log"
)

// Plugin watches a permissions file and applies every valid revision to the
// hub with Hub.SetPermissions. An invalid revision is logged and the
// permissions in effect are kept.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	hub      *hub.Hub
	logger   log.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the permissions watcher.
type Config struct {
	// Path is the TOML or YAML permissions file. Required.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new permissions watcher with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "permwatcher"
}

// Initialize starts watching the directory holding the permissions file.
// Editors often replace files instead of writing them in place, so the
// directory is watched rather than the file.
func (p *Plugin) Initialize(ctx context.Context, cfg hub.PluginConfig) error {
	if p.path == "" {
		return fmt.Errorf("permwatcher: permissions path is required")
	}

	p.mu.Lock()
	p.hub = cfg.Hub
	p.logger = cfg.Logger
	p.mu.Unlock()
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("permwatcher: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("permwatcher: watch %s: %w", filepath.Dir(p.path), err)
	}
	p.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	p.logger.Info("permissions watcher started", log.String("path", p.path))
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

// Reloads reports how many revisions were applied.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("permissions watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

func (p *Plugin) reload() {
	perms, err := hub.LoadPermissions(p.path)
	if err != nil {
		p.logger.Warn("permissions reload failed, keeping current rules",
			log.String("path", p.path),
			log.Err(err),
		)
		return
	}
	p.hub.SetPermissions(perms)

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()
}

// Ensure Plugin implements hub.Plugin.
var _ hub.Plugin = (*Plugin)(nil)
