package hub

import (
	"context"

	"github.com/bft-labs/xstore/pkg/log"
)

// Plugin extends a hub with a background task started by Start and stopped
// by Stop.
type Plugin interface {
	// Name returns the plugin identifier.
	Name() string

	// Initialize starts the plugin. It must not block.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// PluginConfig is passed to every plugin on Initialize.
type PluginConfig struct {
	Hub    *Hub
	Logger log.Logger
}

// WithPlugin registers a plugin. Plugins are initialized in registration
// order and shut down in reverse order.
func WithPlugin(p Plugin) Option {
	return func(h *Hub) {
		h.plugins = append(h.plugins, p)
	}
}

// Start initializes the registered plugins. If one fails, the plugins
// already started are shut down and the error is returned.
func (h *Hub) Start(ctx context.Context) error {
	cfg := PluginConfig{Hub: h, Logger: h.logger}
	for i, p := range h.plugins {
		if err := p.Initialize(ctx, cfg); err != nil {
			h.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
			h.shutdownPlugins(context.Background(), h.plugins[:i])
			return err
		}
		h.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	return nil
}

// Stop shuts the plugins down in reverse order.
func (h *Hub) Stop(ctx context.Context) {
	h.shutdownPlugins(ctx, h.plugins)
}

func (h *Hub) shutdownPlugins(ctx context.Context, plugins []Plugin) {
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			h.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
			continue
		}
		h.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
}
