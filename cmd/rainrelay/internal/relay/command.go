package relay

import (
	"github.com/spf13/cobra"
)

func NewRelayCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "relay",
		Aliases: []string{"r"},
		Short:   "Start the rain alert relay",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return relayCmd(debug)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
