package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/xstore/pkg/log"
	"github.com/bft-labs/xstore/pkg/wsframe"
	"github.com/bft-labs/xstore/pkg/xstore"
)

// withClient connects to the configured hub, runs fn and disconnects.
func withClient(ctx context.Context, c *cli, fn func(context.Context, *xstore.Client) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.NewZerologAdapterWithLogger(c.logger)

	doc, err := wsframe.New(c.cfg.Location, wsframe.WithLogger(logger))
	if err != nil {
		return err
	}
	defer doc.Close()

	client, err := xstore.New(ctx, xstore.Config{
		HubURL:  c.cfg.HubURL,
		Timeout: c.cfg.Timeout,
	}, xstore.WithHost(doc), xstore.WithLogger(logger))
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.OnConnect(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", c.cfg.HubURL, err)
	}
	return fn(ctx, client)
}

func newClientCommands(c *cli) []*cobra.Command {
	var ttl time.Duration

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), c, func(ctx context.Context, client *xstore.Client) error {
				if ttl > 0 {
					return client.SetTTL(ctx, args[0], args[1], ttl)
				}
				return client.Set(ctx, args[0], args[1])
			})
		},
	}
	set.Flags().DurationVar(&ttl, "ttl", 0, "expire the value after this duration")

	get := &cobra.Command{
		Use:   "get KEY [KEY...]",
		Short: "Print stored values, one per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), c, func(ctx context.Context, client *xstore.Client) error {
				values, err := client.GetMany(ctx, args[0], args[1:]...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, v := range values {
					if !v.Valid {
						fmt.Fprintf(out, "%s\t(nil)\n", args[i])
						continue
					}
					fmt.Fprintf(out, "%s\t%s\n", args[i], v.String)
				}
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "del KEY [KEY...]",
		Short: "Delete keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), c, func(ctx context.Context, client *xstore.Client) error {
				return client.Del(ctx, args[0], args[1:]...)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), c, func(ctx context.Context, client *xstore.Client) error {
				return client.Clear(ctx)
			})
		},
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), c, func(ctx context.Context, client *xstore.Client) error {
				list, err := client.GetKeys(ctx)
				if err != nil {
					return err
				}
				for _, k := range list {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}

	cmds := []*cobra.Command{set, get, del, clearCmd, keys}
	for _, cmd := range cmds {
		cmd.Flags().StringVar(&c.cfg.HubURL, "hub-url", c.cfg.HubURL, "hub websocket URL")
		cmd.Flags().StringVar(&c.cfg.Location, "location", c.cfg.Location, "origin presented to the hub, as a URL")
	}
	return cmds
}
