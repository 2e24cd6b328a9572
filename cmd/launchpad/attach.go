package main

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var serverFlag string

var attachCmd = &cobra.Command{
	Use:   "attach <run-id>",
	Short: "Attach to a run on a serve instance",
	Long: `Connect to a running launchpad serve instance and bridge a run's
input and output to this terminal. Attaching displaces any client
already connected to the run.

Examples:
  launchpad attach 4f1c9b2a-...
  launchpad attach 4f1c9b2a-... --server otherhost:9090`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func init() {
	attachCmd.Flags().StringVar(&serverFlag, "server", "", "serve instance host:port (default localhost:<config port>)")
	rootCmd.AddCommand(attachCmd)
}

// attachMessage mirrors the serve instance's WebSocket frames.
type attachMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	host := serverFlag
	if host == "" {
		host = fmt.Sprintf("localhost:%d", cfg.Server.Port)
	}
	u := url.URL{Scheme: "ws", Host: host, Path: "/api/runs/" + args[0] + "/ws"}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", u.String(), err)
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				msg := attachMessage{
					Type: "input",
					Data: base64.StdEncoding.EncodeToString(buf[:n]),
				}
				writeMu.Lock()
				werr := conn.WriteJSON(msg)
				writeMu.Unlock()
				if werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		var msg attachMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Closed without a "closed" frame: displaced by another
			// client or the server went away.
			return fmt.Errorf("connection lost: %w", err)
		}
		switch msg.Type {
		case "output":
			data, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				continue
			}
			os.Stdout.Write(data)
		case "closed":
			if msg.ExitCode != nil && *msg.ExitCode != 0 {
				return exitCodeError{code: *msg.ExitCode}
			}
			return nil
		}
	}
}
