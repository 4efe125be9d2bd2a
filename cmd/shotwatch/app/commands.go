package app

import (
	"runtime"

	"github.com/spf13/cobra"

	configcmd "github.com/agentstation/shotwatch/cmd/shotwatch/cmd/config"
	"github.com/agentstation/shotwatch/cmd/shotwatch/cmd/serve"
	"github.com/agentstation/shotwatch/pkg/constants"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(configcmd.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", constants.AppName, a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
