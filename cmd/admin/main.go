package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/api/clients"
)

var flagServerAddr *cli.StringFlag = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:3001",
	Usage:   "Store backend address to query",
	EnvVars: []string{"SERVER_ADDR"},
}
var flagAdminToken *cli.StringFlag = &cli.StringFlag{
	Name:    "admin-token",
	Value:   "",
	Usage:   "Shared admin secret",
	EnvVars: []string{"ADMIN_TOKEN"},
}

func main() {
	godotenv.Load()

	app := &cli.App{
		Name:           "admin client",
		Usage:          "Query and exercise the swag store admin API",
		DefaultCommand: "health",
		Commands: []*cli.Command{
			{
				Name:        "health",
				Usage:       "",
				Description: "Print service health and store sizes",
				Flags: []cli.Flag{
					flagServerAddr,
				},
				Action: func(cCtx *cli.Context) error {
					client := clients.NewClient(cCtx.String(flagServerAddr.Name))
					health, err := client.Health()
					if err != nil {
						return err
					}
					return printJSON(health)
				},
			},
			{
				Name:        "orders",
				Usage:       "",
				Description: "List all recorded orders, newest first",
				Flags: []cli.Flag{
					flagServerAddr,
					flagAdminToken,
				},
				Action: func(cCtx *cli.Context) error {
					admin := newAdminClient(cCtx)
					orders, err := admin.Orders()
					if err != nil {
						return err
					}
					return printJSON(orders)
				},
			},
			{
				Name:        "instances",
				Usage:       "",
				Description: "List all non-expired instances",
				Flags: []cli.Flag{
					flagServerAddr,
					flagAdminToken,
				},
				Action: func(cCtx *cli.Context) error {
					admin := newAdminClient(cCtx)
					instances, err := admin.Instances()
					if err != nil {
						return err
					}
					return printJSON(instances)
				},
			},
			{
				Name:        "create-instance",
				Usage:       "",
				Description: "Provision an instance for an email address",
				Flags: []cli.Flag{
					flagServerAddr,
					&cli.StringFlag{
						Name:     "email",
						Required: true,
						Usage:    "Email address to provision for",
					},
				},
				Action: func(cCtx *cli.Context) error {
					client := clients.NewClient(cCtx.String(flagServerAddr.Name))
					created, err := client.CreateInstance(cCtx.String("email"))
					if err != nil {
						return err
					}
					return printJSON(created)
				},
			},
			{
				Name:        "submit-order",
				Usage:       "",
				Description: "Submit an order from a JSON file",
				Flags: []cli.Flag{
					flagServerAddr,
					flagAdminToken,
					&cli.StringFlag{
						Name:     "order-file",
						Required: true,
						Usage:    "Path to a JSON order request",
					},
				},
				Action: func(cCtx *cli.Context) error {
					raw, err := os.ReadFile(cCtx.String("order-file"))
					if err != nil {
						return err
					}

					var order api.OrderRequest
					if err := json.Unmarshal(raw, &order); err != nil {
						return fmt.Errorf("failed to parse order file: %w", err)
					}

					admin := newAdminClient(cCtx)
					result, err := admin.SubmitOrder(&order)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newAdminClient(cCtx *cli.Context) *clients.AdminClient {
	return clients.NewAdminClient(cCtx.String(flagServerAddr.Name), cCtx.String(flagAdminToken.Name))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
