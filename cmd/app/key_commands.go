package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/erpnext-api-tester/cmd/app/commands"
	"github.com/allisson/erpnext-api-tester/internal/app"
	"github.com/allisson/erpnext-api-tester/internal/config"
	cryptoService "github.com/allisson/erpnext-api-tester/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key for sealing connection credentials",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI, e.g. base64key://... or hashivault://my-key",
				},
			},
			Action: withContainer(false,
				func(ctx context.Context, cmd *cli.Command, _ *config.Config, container *app.Container) error {
					return commands.RunCreateMasterKey(ctx, container.KMSService(), container.Logger(), os.Stdout,
						cmd.String("kms-provider"), cmd.String("kms-key-uri"))
				}),
		},
		{
			Name:  "rotate-master-key",
			Usage: "Reseal every stored credential under a new master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "new-key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "New master key in the same form as ENCRYPTION_KEY_BASE64",
				},
			},
			Action: withContainer(true,
				func(ctx context.Context, cmd *cli.Command, cfg *config.Config, container *app.Container) error {
					connections, err := container.ConnectionUseCase()
					if err != nil {
						return err
					}
					loader := cryptoService.NewMasterKeyLoader(container.KMSService(), container.Logger())
					return commands.RunRotateMasterKey(ctx, connections, loader, container.Logger(), os.Stdout,
						cmd.String("new-key"), cfg.KMSKeyURI)
				}),
		},
		{
			Name:  "verify-credentials",
			Usage: "Check that every stored credential unseals with the current master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   commands.FormatText,
					Usage:   "Report format, text or json",
				},
			},
			Action: withContainer(true,
				func(ctx context.Context, cmd *cli.Command, _ *config.Config, container *app.Container) error {
					connections, err := container.ConnectionUseCase()
					if err != nil {
						return err
					}
					return commands.RunVerifyCredentials(ctx, connections, container.Logger(), os.Stdout,
						cmd.String("format"))
				}),
		},
	}
}
