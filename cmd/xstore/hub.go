package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/xstore/internal/cliconfig"
	"github.com/bft-labs/xstore/pkg/hub"
	"github.com/bft-labs/xstore/pkg/hub/store"
	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/plugins/permwatcher"
)

const shutdownTimeout = 10 * time.Second

func newHubCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hub",
		Short: "Serve a storage hub over websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHub(cmd.Context(), c)
		},
	}

	cmd.Flags().StringVar(&c.cfg.ListenAddr, "listen", c.cfg.ListenAddr, "address to listen on")
	cmd.Flags().StringVar(&c.cfg.Store, "store", c.cfg.Store, "store backend (memory or sqlite)")
	cmd.Flags().StringVar(&c.cfg.StorePath, "store-path", c.cfg.StorePath, "sqlite database path (default: store.db in home)")
	cmd.Flags().StringVar(&c.cfg.PermissionsPath, "permissions", c.cfg.PermissionsPath, "TOML or YAML permissions file (default: allow every origin)")
	cmd.Flags().BoolVar(&c.cfg.Watch, "watch", c.cfg.Watch, "reload the permissions file when it changes")
	return cmd
}

func openStore(cfg cliconfig.Config) (store.Store, error) {
	if cfg.Store == cliconfig.StoreSQLite {
		st, err := store.NewSQLite(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return store.NewMemory(), nil
}

func runHub(ctx context.Context, c *cli) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewZerologAdapterWithLogger(c.logger)

	st, err := openStore(c.cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	perms := hub.AllowAll()
	if c.cfg.PermissionsPath != "" {
		if perms, err = hub.LoadPermissions(c.cfg.PermissionsPath); err != nil {
			return err
		}
	} else {
		c.logger.Warn().Msg("no permissions file, every origin may use every method")
	}

	opts := []hub.Option{hub.WithLogger(logger)}
	if c.cfg.Watch {
		opts = append(opts, permwatcher.WithPermWatcher(permwatcher.DefaultConfig(c.cfg.PermissionsPath)))
	}
	h := hub.New(st, perms, opts...)
	if err := h.Start(ctx); err != nil {
		return fmt.Errorf("start hub: %w", err)
	}
	defer h.Stop(context.Background())

	srv := &http.Server{
		Addr:              c.cfg.ListenAddr,
		Handler:           hub.Handler(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	c.logger.Info().
		Str("listen", c.cfg.ListenAddr).
		Str("store", c.cfg.Store).
		Int("rules", len(perms.Rules())).
		Msg("hub started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.logger.Info().Msg("received signal, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
