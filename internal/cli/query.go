package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print attendance statistics for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				stats, err := a.svc.GetAttendanceStats(cmd.Context(), date)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

// NewPayrollCommand creates the payroll command.
func NewPayrollCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payroll <employee-id> <start> <end>",
		Short: "Calculate and record payroll for a period",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.svc.CalculatePayroll(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

// NewPaydayCommand creates the payday command.
func NewPaydayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payday",
		Short: "Print the payday schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				info, err := a.svc.GetNextPayday(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info)
			})
		},
	}
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Check credentials and print a session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				res, err := a.svc.Authenticate(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search employees by name, username or department",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				hits, err := a.svc.SearchEmployees(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), hits)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum results (0 = all)")
	return cmd
}

// NewDepartmentCommand creates the department command.
func NewDepartmentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "department [name]",
		Short: "List departments, or the employees of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				ctx := cmd.Context()
				if len(args) == 0 {
					names, err := a.svc.GetDepartments(ctx)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), names)
				}
				list, err := a.svc.GetEmployeesByDepartment(ctx, args[0])
				if err != nil {
					return err
				}
				if len(list) == 0 {
					if s, ok := a.svc.SuggestDepartment(ctx, args[0]); ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "no employees in %q; did you mean %q?\n", args[0], s)
					}
				}
				return printJSON(cmd.OutOrStdout(), list)
			})
		},
	}
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Add placeholder attendance rows for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(a *app) error {
				var (
					n   int
					err error
				)
				if date == "" {
					n, err = a.svc.BackfillToday(cmd.Context())
				} else {
					n, err = a.svc.BackfillDay(cmd.Context(), date)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"added": n, "status": a.svc.Status()})
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}
