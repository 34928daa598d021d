package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dispatch-mcp/swag-store-backend/cmd/flags"
	"github.com/dispatch-mcp/swag-store-backend/deploy"
	"github.com/dispatch-mcp/swag-store-backend/httpserver"
	"github.com/dispatch-mcp/swag-store-backend/orderlog"
	"github.com/dispatch-mcp/swag-store-backend/registry"
	"github.com/dispatch-mcp/swag-store-backend/storage"
)

var serverFlags []cli.Flag = append([]cli.Flag{
	&cli.StringFlag{
		Name:    "listen-addr",
		Value:   "127.0.0.1:3001",
		Usage:   "address to listen on for API",
		EnvVars: []string{"LISTEN_ADDR"},
	},
	&cli.StringFlag{
		Name:    "admin-token",
		Value:   "",
		Usage:   "shared secret for order submission and admin queries; empty disables them",
		EnvVars: []string{"ADMIN_TOKEN"},
	},
	&cli.StringFlag{
		Name:    "webhook-url",
		Value:   "",
		Usage:   "URL to notify about accepted orders; empty disables notifications",
		EnvVars: []string{"ORDER_WEBHOOK_URL"},
	},
	&cli.StringFlag{
		Name:    "deploy-script",
		Value:   "",
		Usage:   "shell script invoked for each new instance; empty skips deployment",
		EnvVars: []string{"DEPLOY_SCRIPT"},
	},
	&cli.StringFlag{
		Name:    "orders-file",
		Value:   "orders.json",
		Usage:   "path for order log snapshots",
		EnvVars: []string{"ORDERS_FILE"},
	},
	&cli.StringFlag{
		Name:    "store-url-base",
		Value:   "",
		Usage:   "base URL for per-instance storefront links",
		EnvVars: []string{"STORE_URL_BASE"},
	},
	&cli.DurationFlag{
		Name:  "cleanup-interval",
		Value: time.Hour,
		Usage: "how often to sweep expired instances",
	},
}, flags.CommonFlags...)

func main() {
	godotenv.Load()

	app := &cli.App{
		Name:  "store-server",
		Usage: "Serve the swag store backend API",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String("listen-addr")
			adminToken := cCtx.String("admin-token")
			webhookURL := cCtx.String("webhook-url")
			deployScript := cCtx.String("deploy-script")
			ordersFile := cCtx.String("orders-file")
			storeURLBase := cCtx.String("store-url-base")
			cleanupInterval := cCtx.Duration("cleanup-interval")

			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)

			if adminToken == "" {
				logger.Warn("No admin token configured, order submission and admin queries are disabled")
			}

			// Order log with file snapshots and optional webhook
			snapshots, err := storage.NewFileBackend(ordersFile, logger)
			if err != nil {
				logger.Error("Failed to create order snapshot backend", "err", err)
				return err
			}

			var notifier orderlog.Notifier
			if webhookURL != "" {
				logger.Info("Order webhook enabled", "url", webhookURL)
				notifier = orderlog.NewWebhookNotifier(webhookURL, logger)
			}

			orders := orderlog.New(orderlog.Config{
				Snapshots: snapshots,
				Notifier:  notifier,
				Log:       logger,
			})
			if err := orders.Restore(context.Background()); err != nil {
				logger.Error("Failed to restore order log", "err", err)
				return err
			}
			logger.Info("Order log restored", "orders", orders.Len())

			// Instance registry with optional deployment script
			var deployer deploy.Deployer = deploy.NopDeployer{}
			if deployScript != "" {
				logger.Info("Deployment script enabled", "script", deployScript)
				deployer = deploy.NewScriptDeployer(deployScript, logger)
			}

			reg := registry.New(registry.Config{
				Deployer: deployer,
				Log:      logger,
			})

			sweepCtx, stopSweeper := context.WithCancel(context.Background())
			defer stopSweeper()
			go reg.RunSweeper(sweepCtx, cleanupInterval)

			handler := httpserver.NewHandler(reg, orders, adminToken, storeURLBase, logger)
			admin := httpserver.NewAdminHandler(adminToken, reg, orders, logger)

			server, err := httpserver.New(cfg, handler, admin)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			stopSweeper()
			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
