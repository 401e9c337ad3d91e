package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbooth01/cli2ansible/internal/app"
	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/infrastructure/capture"
)

// convertedEvent is the JSON shape of one reconstructed command in the
// convert-cast output.
type convertedEvent struct {
	Timestamp float64 `json:"timestamp"`
	EventType string  `json:"event_type"`
	Data      string  `json:"data"`
	Sequence  int     `json:"sequence"`
}

func newConvertCastCommand(container *app.Container) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert-cast <cast_file>",
		Short: "Convert a .cast recording to human-readable JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("File not found: %s", path)
			}

			commands, err := capture.ParseCastFile(container.Parser, path, container.Config.Parser.MaxUploadBytes)
			if err != nil {
				var parseErr *domain.ParseError
				if errors.As(err, &parseErr) {
					return fmt.Errorf("Invalid .cast file: %s", parseErr.Error())
				}
				return err
			}

			converted := make([]convertedEvent, 0, len(commands))
			for _, c := range commands {
				converted = append(converted, convertedEvent{
					Timestamp: c.Timestamp,
					EventType: string(domain.KindOutput),
					Data:      c.Text,
					Sequence:  c.Sequence,
				})
			}

			payload, err := json.MarshalIndent(converted, "", "  ")
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			if err := os.WriteFile(output, append(payload, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d events to %s\n", len(converted), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
