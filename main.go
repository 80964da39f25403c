package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"pageloader/config"
	"pageloader/fetcher"
	"pageloader/loader"
	"pageloader/logger"
)

var (
	// Version - Version number, set at build time
	Version = "dev"
	// Revision - Git revision, set at build time
	Revision = "xxx"
)

func main() {
	app := &cli.App{
		Name:      "page-loader",
		Usage:     "download a web page with its same-origin resources for offline viewing",
		Version:   versionString(),
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "directory to save the page into",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionString() string {
	if Revision != "" && Revision != "xxx" {
		return Version + " (" + Revision + ")"
	}
	return Version
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one URL argument is required, see `%s --help`", c.App.Name)
	}

	verbose := c.Bool("verbose")
	cleanup, err := logger.InitLogger(verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	f, err := fetcher.NewHTTPFetcher(&fetcher.Config{
		Timeout:    cfg.Fetch.Timeout,
		UserAgent:  cfg.Fetch.UserAgent,
		MaxWorkers: cfg.Fetch.MaxWorkers,
	})
	if err != nil {
		return err
	}

	result, err := loader.New(f, verbose).Download(c.Args().First(), c.String("output"))
	if err != nil {
		return err
	}

	for _, failedURL := range result.FailedResources {
		zap.S().Warnw("resource could not be downloaded, original URL kept", "url", failedURL)
	}

	fmt.Println(result.HTMLPath)
	fmt.Println(result.ResourcesDir)
	return nil
}
