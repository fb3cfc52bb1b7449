package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-timekeeping/internal/app"
	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/report"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

type periodFlags struct {
	start    string
	end      string
	employee string
	json     bool
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "Last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.employee, "employee", "", "Restrict to one employee ID")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func (f *periodFlags) employeeID() *string {
	if f.employee == "" {
		return nil
	}
	return &f.employee
}

func summaryCmd() *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the attendance summary for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Report.Summarize(ctx, report.SummaryRequest{
					StartDate:  flags.start,
					EndDate:    flags.end,
					EmployeeID: flags.employeeID(),
				})
				if err != nil {
					return err
				}
				if flags.json {
					return printJSON(cmd.OutOrStdout(), result)
				}
				return printSummary(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func payrollCmd() *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Derive payroll lines for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Payroll.Generate(ctx, payroll.GenerateRequest{
					StartDate:  flags.start,
					EndDate:    flags.end,
					EmployeeID: flags.employeeID(),
				})
				if err != nil {
					return err
				}
				if flags.json {
					return printJSON(cmd.OutOrStdout(), result)
				}
				return printPayroll(cmd.OutOrStdout(), result)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run scheduled jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered jobs in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, name := range a.Scheduler.Jobs() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run [name]",
		Short: "Run one job, or every job in order when no name is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if len(args) == 1 {
					if err := a.Scheduler.RunJob(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
					return nil
				}
				if err := a.Scheduler.RunOnce(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ran %d jobs\n", len(a.Scheduler.Jobs()))
				return nil
			})
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		employeeID string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := user.RolePermissions[user.Role(role)]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
			if err != nil {
				return err
			}

			token, _, err := jwtService.GenerateAccessToken(employeeID, user.Role(role))
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "Employee ID placed in the token")
	cmd.Flags().StringVar(&role, "role", string(user.RoleEmployee), "Role placed in the token")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.StorageDriverPostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StorageDriverPostgres)
			}

			db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := postgresql.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, s report.SummaryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period %s to %s\n\n", s.PeriodStart, s.PeriodEnd)

	fmt.Fprintln(tw, "DATE\tPRESENT\tLATE\tABSENT\tLEAVE\tHALF_DAY\tHOLIDAY\tTOTAL")
	for _, d := range s.Daily {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			d.Date, d.Present, d.Late, d.Absent, d.Leave, d.HalfDay, d.Holiday, d.Total)
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "EMPLOYEE\tNAME\tPRESENT\tLATE\tABSENT\tLEAVE\tUNPAID\tWORKED_H\tOVERTIME_H")
	for _, e := range s.Employees {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			e.EmployeeID, e.FullName, e.PresentDays, e.LateDays, e.AbsentDays,
			e.LeaveDays, e.UnpaidLeaveDays, e.WorkedHours, e.OvertimeHours)
	}
	return tw.Flush()
}

func printPayroll(w io.Writer, p payroll.PayrollReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period %s to %s\n\n", p.PeriodStart, p.PeriodEnd)

	fmt.Fprintln(tw, "EMPLOYEE\tNAME\tBASE\tABSENCE\tUNPAID_LEAVE\tOVERTIME\tTOTAL")
	for _, l := range p.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t-%s\t-%s\t+%s\t%s\n",
			l.EmployeeID, l.FullName,
			l.BaseSalary.StringFixed(2), l.AbsenceDeduction.StringFixed(2),
			l.UnpaidLeaveDeduction.StringFixed(2), l.OvertimePay.StringFixed(2),
			l.TotalPay.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t\t\t\t%s\n", p.TotalPay.StringFixed(2))

	for _, s := range p.Skipped {
		fmt.Fprintf(tw, "skipped %s: %s\n", s.EmployeeID, s.Reason)
	}
	return tw.Flush()
}
