package main

import (
	"os"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/tanglebyte/supersetds/fetch"
	"github.com/tanglebyte/supersetds/xerrors"
)

var fetchDataCommand = cli.Command{
	Name:  "fetch-data",
	Usage: "sync every configured corpus source into a samples directory",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "sources-config", Value: "sources.yaml", Usage: "path to the sources config YAML"},
		cli.StringFlag{Name: "output-directory", Value: "test-data/samples", Usage: "directory samples are synced into"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadSourcesConfig(c.String("sources-config"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if err := fetch.Sync(cfg, c.String("output-directory"), fetch.StubFetcher{}); err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	},
}

func loadSourcesConfig(path string) (*fetch.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.IO(err, "reading sources config "+path)
	}
	var cfg fetch.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, xerrors.Decode(err, "parsing sources config "+path)
	}
	return &cfg, nil
}
