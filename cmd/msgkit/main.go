package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/oxmsg/msgkit/msg"
)

func main() {
	godotenv.Load() // ignored if absent; loads .env into the environment, which no command reads

	app := cli.NewApp()

	app.Name = "msgkit"
	app.Usage = "Synthesize Outlook .msg files without Outlook, MAPI, or Windows"
	app.Version = "0.1.0"
	app.Description = `msgkit: from-scratch MS-CFB / MS-OXMSG .msg synthesis.
No Outlook, MAPI, or Windows dependency.`

	var logger *slog.Logger

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "json-logs",
			Usage: "emit structured JSON logs instead of text",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "include debug-level diagnostics (sector counts, stream counts)",
		},
	}

	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.Bool("verbose") {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}

		var handler slog.Handler
		if c.Bool("json-logs") {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		logger = slog.New(handler)
		msg.Logger = logger // Compose hands it on to the cfb.Writer it creates
		return nil
	}

	// app.Before always runs before a matched command's Action, so the
	// commands below read *logger lazily through this accessor rather than
	// capturing a value that doesn't exist yet at app.Commands build time.
	getLogger := func() *slog.Logger { return logger }

	app.Commands = []cli.Command{
		buildCommand(getLogger),
		batchCommand(getLogger),
	}

	if err := app.Run(os.Args); err != nil {
		slog.Default().Error(err.Error())
		os.Exit(1)
	}
}
