// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pbooth01/cli2ansible/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	ConfigPath string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "cli2ansible",
		Short: "cli2ansible - turn terminal recordings into Ansible roles",
		Long:  "cli2ansible parses asciinema recordings, reconstructs the executed commands and translates them into Ansible tasks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newConvertCastCommand(container))
	root.AddCommand(newServeCommand(container))
	return root, nil
}
