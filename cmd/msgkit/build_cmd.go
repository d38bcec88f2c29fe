package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli"
)

func buildCommand(getLogger func() *slog.Logger) cli.Command {
	return cli.Command{
		Name:  "build",
		Usage: "synthesize a single .msg file from a YAML message description",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config,c",
				Usage: "path to the YAML message description",
			},
			cli.StringFlag{
				Name:  "out,o",
				Usage: "output .msg path (overrides the config file's out field)",
			},
			cli.Int64Flag{
				Name:  "seed",
				Usage: "deterministic random seed; 0 (default) uses crypto/rand",
			},
		},
		Action: func(c *cli.Context) error {
			logger := getLogger()
			configPath := c.String("config")
			if configPath == "" {
				return cli.NewExitError("missing --config", 1)
			}

			cfg, err := loadMessageConfig(configPath)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}

			out := c.String("out")
			if out == "" {
				out = cfg.Out
			}
			if out == "" {
				return cli.NewExitError("no output path: set --out or the config's out field", 1)
			}

			prompter := &passphrasePrompter{}
			m, now, err := buildFromConfig(cfg, time.Now(), prompter, logger)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}

			if err := m.Save(out, now, deterministicRand(c.Int64("seed"))); err != nil {
				return cli.NewExitError(fmt.Sprintf("saving %s: %v", out, err), 1)
			}

			logger.Info("msgkit: wrote message", "path", out)
			return nil
		},
	}
}
