package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/pushmesh-go/internal/cli/config"
	"github.com/yndnr/pushmesh-go/internal/cli/connection"
	"github.com/yndnr/pushmesh-go/internal/cli/output"
	"github.com/yndnr/pushmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/pushmesh-go/internal/infra/tlsroots"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "pushmesh-cli",
		Usage:   "PushMesh relay command-line tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			NotifyCommand(),
			ConnectionsCommand(),
			HealthCommand(),
			ReadyCommand(),
			ListenCommand(),
			ConfigCommand(),
		},
		Before: loadCLIConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "relay address (e.g. localhost:8080)",
			EnvVars: []string{"PUSHMESH_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "print request details to stderr",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout (default from cli config)",
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file with a CA that signs the relay certificate",
			EnvVars: []string{"PUSHMESH_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "skip TLS certificate verification",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "cli config file",
			EnvVars: []string{"PUSHMESH_CLI_CONFIG"},
			Value:   cliconfig.DefaultConfigPath(),
		},
	}
}

func loadCLIConfig(c *cli.Context) error {
	cfg, err := cliconfig.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

// GlobalFlags holds the resolved global settings.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Wide    bool
	Verbose bool
	Config  *cliconfig.CLIConfig

	// Conn carries TLS settings for https and wss servers.
	Conn []connection.Option
}

// ParseGlobalFlags resolves global flags against the cli config file.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg, _ := c.App.Metadata[metaConfig].(*cliconfig.CLIConfig)
	if cfg == nil {
		cfg = cliconfig.Default()
	}

	out := c.String("output")
	if out == "" {
		out = cfg.DefaultOutput
	}
	format, err := output.ParseFormat(out)
	if err != nil {
		return nil, err
	}

	if d := c.Duration("timeout"); d > 0 {
		cfg.Timeout = d
	}

	flags := &GlobalFlags{
		Server:  cfg.Server(c.String("server")),
		Output:  format,
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
		Config:  cfg,
	}
	if c.String("ca-file") != "" || c.Bool("insecure") {
		tlsCfg, err := tlsroots.ClientConfig(c.String("ca-file"), c.Bool("insecure"))
		if err != nil {
			return nil, err
		}
		flags.Conn = append(flags.Conn, connection.WithTLSConfig(tlsCfg))
	}
	return flags, nil
}

// newClient builds an HTTP client for the resolved server.
func newClient(c *cli.Context) (*connection.HTTPClient, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	client := connection.NewHTTPClient(flags.Server, flags.Config.Timeout, flags.Conn...)
	if flags.Verbose {
		fmt.Fprintf(errWriter(c), "server: %s\n", client.BaseURL())
	}
	return client, flags, nil
}

// get performs GET path and decodes the envelope data into target.
func get(c *cli.Context, client *connection.HTTPClient, path string, target any) error {
	resp, err := client.Get(requestContext(c), path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return connection.ParseResponse(resp, target)
}

// post performs POST path with a JSON body and decodes the envelope data.
func post(c *cli.Context, client *connection.HTTPClient, path string, body, target any) error {
	resp, err := client.Post(requestContext(c), path, body)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	return connection.ParseResponse(resp, target)
}

// render writes data in the selected output format.
func render(c *cli.Context, flags *GlobalFlags, data any) error {
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

func requestContext(c *cli.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
