package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pushmesh-go/internal/cli/output"
)

type connectionDetail struct {
	ID           string    `json:"id"`
	InstanceID   string    `json:"instance_id" table:"wide"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActivity time.Time `json:"last_activity" table:"wide"`
}

type connectionsResult struct {
	Connections []string           `json:"connections"`
	Count       int                `json:"count"`
	Details     []connectionDetail `json:"details,omitempty"`
}

// ConnectionsCommand returns the connections command.
func ConnectionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "connections",
		Aliases: []string{"ls"},
		Usage:   "List connected destinations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "detail",
				Aliases: []string{"d"},
				Usage:   "include remote address and timestamps",
			},
		},
		Action: connectionsAction,
	}
}

func connectionsAction(c *cli.Context) error {
	client, flags, err := newClient(c)
	if err != nil {
		return err
	}

	path := "/connections"
	if c.Bool("detail") {
		path += "?detail=true"
	}

	var result connectionsResult
	if err := get(c, client, path, &result); err != nil {
		return err
	}

	if flags.Output != output.FormatTable {
		return render(c, flags, result)
	}
	if c.Bool("detail") {
		return render(c, flags, result.Details)
	}

	table := &output.Table{Headers: []string{"DESTINATION_ID"}}
	for _, id := range result.Connections {
		table.AddRow(id)
	}
	return render(c, flags, table)
}
