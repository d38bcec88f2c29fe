package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/urfave/cli"
)

func batchCommand(getLogger func() *slog.Logger) cli.Command {
	return cli.Command{
		Name:  "batch",
		Usage: "synthesize many .msg files from a YAML batch description",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "config,c",
				Usage: "path to the YAML batch description",
			},
			cli.StringFlag{
				Name:  "out-dir,o",
				Usage: "output directory (overrides the config's out_dir field)",
			},
			cli.IntFlag{
				Name:  "workers,w",
				Value: 4,
				Usage: "maximum messages synthesized concurrently",
			},
			cli.Int64Flag{
				Name:  "seed",
				Usage: "deterministic random seed; 0 (default) uses crypto/rand and a distinct seed per message is derived from it otherwise",
			},
		},
		Action: func(c *cli.Context) error {
			logger := getLogger()
			configPath := c.String("config")
			if configPath == "" {
				return cli.NewExitError("missing --config", 1)
			}

			batch, err := loadBatchConfig(configPath)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}

			outDir := c.String("out-dir")
			if outDir == "" {
				outDir = batch.OutDir
			}
			if outDir == "" {
				return cli.NewExitError("no output directory: set --out-dir or the config's out_dir field", 1)
			}

			baseTime := time.Now()
			if batch.BaseTime != "" {
				baseTime, err = time.Parse(time.RFC3339, batch.BaseTime)
				if err != nil {
					return cli.NewExitError(fmt.Sprintf("parsing base_time: %v", err), 1)
				}
			}

			workers := c.Int("workers")
			if workers < 1 {
				workers = 1
			}
			seed := c.Int64("seed")

			// Each message gets its own prompter (see synthesizeOne) so an
			// encrypted attachment's passphrase is asked for once per message
			// rather than shared across goroutines, which would otherwise race
			// on p.have.
			var (
				wg       sync.WaitGroup
				sem      = make(chan struct{}, workers)
				mu       sync.Mutex
				firstErr error
			)

			for i, cfg := range batch.Messages {
				i, cfg := i, cfg
				wg.Add(1)
				sem <- struct{}{}
				go func() {
					defer wg.Done()
					defer func() { <-sem }()

					if err := synthesizeOne(cfg, i, baseTime, outDir, seed, logger); err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if firstErr != nil {
				return cli.NewExitError(firstErr.Error(), 1)
			}
			logger.Info("msgkit: batch complete", "messages", len(batch.Messages), "out_dir", outDir)
			return nil
		},
	}
}

func synthesizeOne(cfg MessageConfig, index int, baseTime time.Time, outDir string, seed int64, logger *slog.Logger) error {
	defaultNow := baseTime.Add(time.Duration(index) * time.Second)

	prompter := &passphrasePrompter{}
	m, now, err := buildFromConfig(cfg, defaultNow, prompter, logger)
	if err != nil {
		return fmt.Errorf("message %d: %w", index, err)
	}

	out := cfg.Out
	if out == "" {
		out = fmt.Sprintf("msg-%04d.msg", index)
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(outDir, out)
	}

	msgSeed := seed
	if seed != 0 {
		msgSeed = seed + int64(index)
	}
	if err := m.Save(out, now, deterministicRand(msgSeed)); err != nil {
		return fmt.Errorf("message %d: saving %s: %w", index, out, err)
	}
	logger.Info("msgkit: wrote message", "path", out, "index", index)
	return nil
}
