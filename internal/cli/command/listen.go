package command

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/pushmesh-go/internal/cli/connection"
	"github.com/yndnr/pushmesh-go/internal/cli/output"
)

// frameView is how a received frame is printed.
type frameView struct {
	Time time.Time `json:"time"`
	Type string    `json:"type"`
	Data string    `json:"data"`
}

// ListenCommand returns the listen command.
func ListenCommand() *cli.Command {
	return &cli.Command{
		Name:      "listen",
		Usage:     "Connect as a destination and print delivered messages",
		ArgsUsage: "DESTINATION_ID",
		Description: "Holds a WebSocket connection open as DESTINATION_ID until interrupted.\n" +
			"Binary frames are printed base64-encoded.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "exit after receiving this many messages (0 = unlimited)",
			},
		},
		Action: listenAction,
	}
}

func listenAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: listen DESTINATION_ID", 2)
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	l, err := connection.NewListener(flags.Server, c.Args().First(), flags.Conn...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(requestContext(c), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if flags.Verbose {
		fmt.Fprintf(errWriter(c), "listening on %s\n", l.URL())
	}

	limit := c.Int("count")
	received := 0
	var writeErr error
	err = l.Listen(ctx, func(m connection.Message) {
		if writeErr == nil {
			writeErr = printFrame(c.App.Writer, flags.Output, m)
		}
		received++
		if writeErr != nil || (limit > 0 && received >= limit) {
			cancel()
		}
	})
	if err != nil {
		return err
	}
	return writeErr
}

func printFrame(w io.Writer, format output.Format, m connection.Message) error {
	v := frameView{Time: m.At.UTC(), Type: "text", Data: string(m.Data)}
	if m.Binary {
		v.Type = "binary"
		v.Data = base64.StdEncoding.EncodeToString(m.Data)
	}

	switch format {
	case output.FormatJSON:
		line, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", line)
		return err
	case output.FormatYAML:
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
		return output.NewFormatter(format, false).Format(w, v)
	default:
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", v.Time.Format(time.RFC3339), v.Type, v.Data)
		return err
	}
}
