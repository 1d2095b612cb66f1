package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/rainrelay/cmd/rainrelay/internal"
	"github.com/tinyland-inc/rainrelay/cmd/rainrelay/internal/relay"
	"github.com/tinyland-inc/rainrelay/cmd/rainrelay/internal/version"
)

func NewRainrelayCommand() *cobra.Command {
	short := fmt.Sprintf("%s rainrelay - Telegram rain alert relay v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "rainrelay",
		Short:   short,
		Example: "rainrelay relay",
	}

	cmd.AddCommand(
		relay.NewRelayCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewRainrelayCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
