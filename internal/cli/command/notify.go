package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pushmesh-go/internal/cli/output"
)

type notifyRequest struct {
	DestinationID string `json:"destination_id"`
	SenderID      string `json:"sender_id,omitempty"`
	Message       string `json:"message"`
}

type notifyResult struct {
	DestinationID string `json:"destination_id" yaml:"destination_id"`
	Outcome       string `json:"outcome" yaml:"outcome"`
}

// NotifyCommand returns the notify command.
func NotifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "notify",
		Usage:     "Send a message to a connected destination",
		ArgsUsage: "DESTINATION_ID MESSAGE",
		Description: "Delivers MESSAGE to DESTINATION_ID if it currently holds a connection.\n" +
			"Use - as MESSAGE to read it from stdin.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sender",
				Usage: "sender identifier carried in envelope deliveries",
			},
		},
		Action: notifyAction,
	}
}

func notifyAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: notify DESTINATION_ID MESSAGE", 2)
	}
	dest, msg := c.Args().Get(0), c.Args().Get(1)

	if msg == "-" {
		reader := c.App.Reader
		if reader == nil {
			return cli.Exit("no stdin available", 2)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		msg = strings.TrimSuffix(string(data), "\n")
	}

	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	var result notifyResult
	err = post(c, client, "/notify", notifyRequest{
		DestinationID: dest,
		SenderID:      c.String("sender"),
		Message:       msg,
	}, &result)
	if err != nil {
		return err
	}

	if flags.Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", result.DestinationID, result.Outcome)
		return nil
	}
	return render(c, flags, result)
}
