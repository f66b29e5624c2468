package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

type healthResult struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Connections int    `json:"connections"`
	Time        string `json:"time"`
}

type readyResult struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Show relay health",
		Action: healthAction,
	}
}

// ReadyCommand returns the ready command. It exits non-zero once the
// relay has begun shutting down.
func ReadyCommand() *cli.Command {
	return &cli.Command{
		Name:   "ready",
		Usage:  "Check whether the relay accepts traffic",
		Action: readyAction,
	}
}

func healthAction(c *cli.Context) error {
	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	var result healthResult
	if err := get(c, client, "/health", &result); err != nil {
		return err
	}
	return render(c, flags, result)
}

func readyAction(c *cli.Context) error {
	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	var result readyResult
	if err := get(c, client, "/ready", &result); err != nil {
		return cli.Exit(fmt.Sprintf("not ready: %v", err), 1)
	}
	return render(c, flags, result)
}
