package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hrdesk/internal/fixtures"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	Employees int
	Days      int
	Seed      int64
	Password  string
	Output    string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a generated fixture file",
		Long: `Generate a reproducible fixture with fake employees and weekday
attendance ending today. Point fixture_path at the result to bootstrap an
empty namespace from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := fixtures.Generate(fixtures.GenerateOptions{
				Employees: opts.Employees,
				Days:      opts.Days,
				Seed:      opts.Seed,
				Password:  opts.Password,
				Today:     time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode fixture: %w", err)
			}
			if err := os.WriteFile(opts.Output, raw, 0o644); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d employees and %d attendance records to %s\n",
				len(snap.Employees), len(snap.AttendanceRecords), opts.Output)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Employees, "employees", "n", 10, "number of staff accounts")
	cmd.Flags().IntVarP(&opts.Days, "days", "d", 14, "days of attendance history")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.Password, "password", "password123", "password shared by generated accounts")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "fixture.json", "output file")
	return cmd
}
