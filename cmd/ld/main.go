package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ledgerdesk/internal/app"
	"ledgerdesk/internal/config"
	"ledgerdesk/internal/db"
	"ledgerdesk/internal/derive"
	"ledgerdesk/internal/directory"
	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/server"
	"ledgerdesk/internal/submit"
)

var rootCmd = &cobra.Command{
	Use:   "ld",
	Short: "Ledgerdesk CLI",
	Long: `Ledgerdesk drafts back-office entries with derived totals and step-by-step forms.
- Workspace: your .ledgerdesk directory holding the reference database.
- Drafts: asset, payroll, and procurement entries built up in a four-step wizard
  (basic -> detail -> assignment -> review); totals and schedules are recomputed
  after every edit, never typed in by hand.
- Validation: advisory only; it reports missing fields per step but never blocks
  moving between steps or submitting.
- Directory: employees, vendors, and asset categories used to fill reference fields.
- Submissions: the journal of snapshots handed to the books of record.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("LEDGERDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(directoryCmd())
	rootCmd.AddCommand(submissionsCmd())
	rootCmd.AddCommand(configCmd())
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			env, err := app.Resolve(workspace)
			if err != nil {
				return err
			}
			defer env.Close()
			handler, err := server.New(server.Config{
				Cfg:       env.Config,
				Directory: directory.SQL{DB: env.DB},
				Sink:      submit.Journal{DB: env.DB},
				BasePath:  basePath,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Ledgerdesk API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var costStr, salvageStr, method string
	var life int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print a depreciation schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, err := decimal.NewFromString(costStr)
			if err != nil {
				return fmt.Errorf("parse --cost: %w", err)
			}
			salvage := decimal.Zero
			if salvageStr != "" {
				salvage, err = decimal.NewFromString(salvageStr)
				if err != nil {
					return fmt.Errorf("parse --salvage: %w", err)
				}
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if method == "" {
				method = cfg.Depreciation.DefaultMethod
			}
			entries, err := derive.Schedule(cost, salvage, life, domain.Method(method), cfg.Rounding.Places)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(entries)
			}
			renderSchedule(os.Stdout, entries, cfg.Rounding.Places)
			return nil
		},
	}
	cmd.Flags().StringVar(&costStr, "cost", "", "acquisition cost")
	cmd.Flags().StringVar(&salvageStr, "salvage", "", "salvage value")
	cmd.Flags().IntVar(&life, "life", 0, "useful life in years")
	cmd.Flags().StringVar(&method, "method", "", "straight_line, declining_balance, or sum_of_years (defaults from config)")
	_ = cmd.MarkFlagRequired("cost")
	_ = cmd.MarkFlagRequired("life")
	return cmd
}

func directoryCmd() *cobra.Command {
	dir := &cobra.Command{
		Use:   "directory",
		Short: "Browse reference data",
	}
	dir.AddCommand(directoryEmployeesCmd())
	dir.AddCommand(directoryVendorsCmd())
	dir.AddCommand(directoryCategoriesCmd())
	return dir
}

func directoryEmployeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env app.Env) error {
				items, err := directory.SQL{DB: env.DB}.ListEmployees(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Department", "Base Salary"})
				for _, e := range items {
					tw.AppendRow(table.Row{e.ID, e.Name, e.Department, e.BaseSalary.StringFixed(env.Config.Rounding.Places)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func directoryVendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "List vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env app.Env) error {
				items, err := directory.SQL{DB: env.DB}.ListVendors(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Contact"})
				for _, v := range items {
					tw.AppendRow(table.Row{v.ID, v.Name, v.Contact})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func directoryCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List asset categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env app.Env) error {
				items, err := directory.SQL{DB: env.DB}.ListCategories(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Default Life (years)"})
				for _, c := range items {
					tw.AppendRow(table.Row{c.ID, c.Name, c.DefaultLifeYears})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func submissionsCmd() *cobra.Command {
	sub := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect the submission journal",
	}
	sub.AddCommand(submissionsListCmd())
	sub.AddCommand(submissionsShowCmd())
	return sub
}

func submissionsListCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env app.Env) error {
				entries, err := submit.Journal{DB: env.DB}.List(ctx, n)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Kind", "Submitted At"})
				for _, e := range entries {
					tw.AppendRow(table.Row{e.ID, e.Kind, e.SubmittedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of submissions")
	return cmd
}

func submissionsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a submission payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(ctx context.Context, env app.Env) error {
				entry, err := submit.Journal{DB: env.DB}.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entry)
				}
				var payload map[string]any
				if err := json.Unmarshal([]byte(entry.PayloadJSON), &payload); err != nil {
					return err
				}
				fmt.Printf("Submission: %s (%s) at %s\n", entry.ID, entry.Kind, entry.SubmittedAt)
				b, _ := json.MarshalIndent(payload, "", "  ")
				fmt.Println(string(b))
				return nil
			})
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage workspace config",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default ledgerdesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the workspace config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

// --- helpers ---

func renderSchedule(out io.Writer, entries []domain.ScheduleEntry, places int32) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Period", "Opening", "Depreciation", "Closing"})
	for _, e := range entries {
		tw.AppendRow(table.Row{
			e.Period,
			e.OpeningValue.StringFixed(places),
			e.PeriodDepreciation.StringFixed(places),
			e.ClosingValue.StringFixed(places),
		})
	}
	tw.Render()
}

func withEnv(ctx context.Context, fn func(context.Context, app.Env) error) error {
	env, err := app.Resolve(viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
