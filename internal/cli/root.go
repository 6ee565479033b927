// Package cli implements the hrdesk command line.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

// NewRootCommand creates the hrdesk root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hrdesk",
		Short: "HR desk data layer",
		Long: `hrdesk runs the employee, attendance and payroll data layer over a
shared key-value namespace and answers one-shot queries against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewPayrollCommand(opts))
	cmd.AddCommand(NewPaydayCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewDepartmentCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))

	return cmd
}
