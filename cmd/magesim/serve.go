package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/server"
	"github.com/magefree/mage-sim/internal/simulation"
	"github.com/magefree/mage-sim/internal/storage"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over gRPC and stream games to websocket observers",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return c.bindFlags(cmd, map[string]string{
				"server.grpc_address":      "grpc-address",
				"server.websocket_address": "websocket-address",
				"storage.driver":           "storage-driver",
				"storage.dsn":              "storage-dsn",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			simCfg, err := cfg.SimulationConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
			if err != nil {
				return err
			}
			var sink simulation.Sink
			if store != nil {
				defer store.Close()
				sink = store
			}

			logger.Info("starting magesim server",
				zap.String("grpc_address", cfg.Server.GRPCAddress),
				zap.String("websocket_address", cfg.Server.WebsocketAddress),
				zap.String("storage", cfg.Storage.Driver),
			)
			srv := server.New(server.Options{
				GRPCAddress:      cfg.Server.GRPCAddress,
				WebsocketAddress: cfg.Server.WebsocketAddress,
				Simulation:       simCfg,
				Sink:             sink,
			}, logger)
			if err := srv.Serve(ctx); err != nil {
				return err
			}
			logger.Info("magesim server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("grpc-address", ":9090", "gRPC listen address")
	flags.String("websocket-address", ":8080", "websocket listen address (empty disables it)")
	flags.String("storage-driver", "none", "outcome storage: none, sqlite or postgres")
	flags.String("storage-dsn", "", "storage path or connection URL")
	return cmd
}
