package permwatcher

import "github.com/bft-labs/xstore/pkg/hub"

// WithPermWatcher returns a hub Option that reloads permissions from
// cfg.Path whenever the file changes.
//
// Usage:
//
//	h := hub.New(st, perms,
//	    permwatcher.WithPermWatcher(permwatcher.DefaultConfig("/etc/xstore/permissions.toml")),
//	)
//	if err := h.Start(ctx); err != nil {
//	    return err
//	}
//	defer h.Stop(ctx)
func WithPermWatcher(cfg Config) hub.Option {
	return hub.WithPlugin(New(cfg))
}
