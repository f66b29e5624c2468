package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/pushmesh-go/internal/infra/confloader"
	serverconfig "github.com/yndnr/pushmesh-go/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a pushmesh-server configuration file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "env",
						Usage: "also apply PUSHMESH_* environment overrides",
					},
					&cli.BoolFlag{
						Name:  "show",
						Usage: "print the effective configuration (secrets masked)",
					},
				},
				Action: configValidate,
			},
			{
				Name:   "default",
				Usage:  "Print the default pushmesh-server configuration",
				Action: configDefault,
			},
			{
				Name:   "show",
				Usage:  "Show the effective pushmesh-cli configuration",
				Action: configShow,
			},
		},
	}
}

func configValidate(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: config validate FILE", 2)
	}
	path := c.Args().First()

	cfg := serverconfig.Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))

	var err error
	if c.Bool("env") {
		err = loader.Load(cfg)
	} else {
		err = loadFileOnly(loader, path, cfg)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", path, err), 1)
	}
	if err := serverconfig.Verify(cfg); err != nil {
		return cli.Exit(fmt.Sprintf("%s: invalid configuration:\n%v", path, err), 1)
	}

	if c.Bool("show") {
		return writeYAML(c, serverconfig.Sanitize(cfg))
	}
	fmt.Fprintf(c.App.Writer, "%s: OK\n", path)
	return nil
}

func loadFileOnly(loader *confloader.Loader, path string, cfg *serverconfig.ServerConfig) error {
	if err := loader.LoadFile(path); err != nil {
		return err
	}
	return loader.Unmarshal(cfg)
}

func configDefault(c *cli.Context) error {
	return writeYAML(c, serverconfig.Default())
}

func configShow(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "# %s\n", c.String("config"))
	view := *flags.Config
	view.DefaultServer = flags.Server
	view.DefaultOutput = string(flags.Output)
	return writeYAML(c, &view)
}

func writeYAML(c *cli.Context, v any) error {
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
