package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"goalboard/internal/app"
	"goalboard/internal/catalog"
	"goalboard/internal/config"
	"goalboard/internal/db"
	"goalboard/internal/migrate"
	"goalboard/internal/report"
	"goalboard/internal/repo"
	"goalboard/internal/server"
	goalboardsdk "goalboard/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "gb",
	Short: "Goalboard CLI",
	Long: `Goalboard tracks strategic initiatives and the projects that execute them.
- Initiatives: yearly goals per department, created through a two step wizard.
- Projects: workstreams linked to one initiative, created through their own wizard.
- Reports: Shaping Goals, Initiative Report and Project Report, exportable to Reports.xlsx.
- Gateway: every submit also writes a review_form_metadata row and a goals row to the configured backend.
- Event log: the sqlite backend records each write, view it with 'gb log tail'.

Records live in the memory of 'gb serve'; the other commands talk to that server.`,
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
	viper.SetEnvPrefix("GOALBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("config", "", "config file (default <workspace>/goalboard.yml)")
	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8080", "goalboard server URL")
	rootCmd.PersistentFlags().String("session", "", "wizard session id")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("session", rootCmd.PersistentFlags().Lookup("session"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(initiativeCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(delaysCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(logCmd())
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace and a default goalboard.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			path := config.Path(workspace)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("Wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Inspect configuration"}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			return printJSON(c)
		},
	})
	return cfg
}

func loadConfig() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.FromFile(path)
	}
	return config.Load(viper.GetString("workspace"))
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if basePath != "" {
				cfg.Server.BasePath = basePath
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Bootstrap(ctx, cfg, app.Options{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer a.Close()
			handler, err := server.New(server.Config{
				Engine:     a.Engine,
				Sessions:   a.Sessions,
				Report:     report.Options{ISCMGoal: cfg.Report.ISCMGoal},
				ExportFile: cfg.Report.ExportFile,
				BasePath:   cfg.Server.BasePath,
				Gatherer:   a.Registry,
				Log:        a.Log.With("component", "http"),
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
			fmt.Printf("Serving Goalboard API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n",
				cfg.Server.Addr, cfg.Server.BasePath, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (overrides config)")
	return cmd
}

func initiativeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "initiative", Short: "Manage initiatives"}
	cmd.AddCommand(initiativeCreateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List initiatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().Initiatives(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := newTable("ID", "Name", "Department", "Goal Year", "Status")
			for _, i := range items {
				tw.AppendRow(table.Row{i.ID, labelOf(i.InitiativeName, i.Name), catalog.Label(catalog.Departments, i.Department), i.GoalYear, i.StatusUpdate})
			}
			tw.Render()
			return nil
		},
	})
	return cmd
}

func initiativeCreateCmd() *cobra.Command {
	var (
		goalYear, driver, focus, department, status string
		name, function, primary, associate, forum   string
		frequencies                                 []string
		iscm, functional, departmental              string
		milestones                                  map[string]string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an initiative through the wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			basics := map[string]any{
				"goalYear":           goalYear,
				"driver":             driver,
				"forYourInformation": focus,
				"department":         department,
			}
			if status != "" {
				basics["statusUpdate"] = status
			}
			details := map[string]any{
				"initiativeName": name,
				"function":       function,
				"primary":        primary,
				"associate":      associate,
				"reviewForum":    forum,
			}
			if len(milestones) > 0 {
				details["milestones"] = milestones
			}
			res, err := client().CreateInitiative(cmd.Context(), goalboardsdk.InitiativeInput{
				Basics:          basics,
				Details:         details,
				ReviewFrequency: frequencies,
				Review:          reviewFields(iscm, functional, departmental),
			})
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			fmt.Println(res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&goalYear, "goal-year", "", "goal year, e.g. 2025-26")
	cmd.Flags().StringVar(&driver, "driver", "", "driver value")
	cmd.Flags().StringVar(&focus, "focus", "", "focus indicator value")
	cmd.Flags().StringVar(&department, "department", "", "department value")
	cmd.Flags().StringVar(&status, "status", "", "status update (default Not Started)")
	cmd.Flags().StringVar(&name, "name", "", "initiative text")
	cmd.Flags().StringVar(&function, "function", "", "functional goal")
	cmd.Flags().StringVar(&primary, "primary", "", "primary owner")
	cmd.Flags().StringVar(&associate, "associate", "", "associate owner")
	cmd.Flags().StringVar(&forum, "forum", "", "review forum")
	cmd.Flags().StringSliceVar(&frequencies, "frequency", nil, "review cadence: Monthly, Quarterly, Yearly")
	cmd.Flags().StringToStringVar(&milestones, "milestone", nil, "milestone dates, e.g. poc=2025-06")
	addReviewFlags(cmd, &iscm, &functional, &departmental)
	return cmd
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Manage projects"}
	cmd.AddCommand(projectCreateCmd())
	var initiativeID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().Projects(cmd.Context(), initiativeID)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := newTable("ID", "Project", "Initiative ID", "Status", "Primary")
			for _, p := range items {
				tw.AppendRow(table.Row{p.ID, labelOf(p.InitiativeName, report.UnnamedProject), p.InitiativeID, p.StatusUpdate, p.PrimaryResponsibility})
			}
			tw.Render()
			return nil
		},
	}
	list.Flags().StringVar(&initiativeID, "initiative", "", "only projects of this initiative")
	cmd.AddCommand(list)
	return cmd
}

func projectCreateCmd() *cobra.Command {
	var (
		initiativeID, name, driver, focusArea, function string
		tag, status, uom, primary, associate, forum     string
		frequencies                                     []string
		iscm, functional, departmental                  string
		milestones                                      map[string]string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project under an initiative",
		RunE: func(cmd *cobra.Command, args []string) error {
			if initiativeID == "" {
				return fmt.Errorf("--initiative required")
			}
			details := map[string]any{
				"initiativeName":          name,
				"driver":                  driver,
				"focusArea":               focusArea,
				"function":                function,
				"uom":                     uom,
				"primaryResponsibility":   primary,
				"associateResponsibility": associate,
				"reviewForum":             forum,
			}
			if tag != "" {
				details["tag"] = tag
			}
			if status != "" {
				details["statusUpdate"] = status
			}
			if len(milestones) > 0 {
				details["milestones"] = milestones
			}
			res, err := client().CreateProject(cmd.Context(), goalboardsdk.ProjectInput{
				InitiativeID:    initiativeID,
				Details:         details,
				ReviewFrequency: frequencies,
				Review:          reviewFields(iscm, functional, departmental),
			})
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(res)
			}
			fmt.Println(res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&initiativeID, "initiative", "", "parent initiative id")
	cmd.Flags().StringVar(&name, "name", "", "project label")
	cmd.Flags().StringVar(&driver, "driver", "", "driver value")
	cmd.Flags().StringVar(&focusArea, "focus-area", "", "focus area")
	cmd.Flags().StringVar(&function, "function", "", "function")
	cmd.Flags().StringVar(&tag, "tag", "", "tag (default BAU)")
	cmd.Flags().StringVar(&status, "status", "", "status update (default Not Started)")
	cmd.Flags().StringVar(&uom, "uom", "", "unit of measure")
	cmd.Flags().StringVar(&primary, "primary", "", "primary responsibility")
	cmd.Flags().StringVar(&associate, "associate", "", "associate responsibility")
	cmd.Flags().StringVar(&forum, "forum", "", "review forum")
	cmd.Flags().StringSliceVar(&frequencies, "frequency", nil, "review cadence: Monthly, Quarterly, Yearly")
	cmd.Flags().StringToStringVar(&milestones, "milestone", nil, "milestone dates, e.g. feasibility=2025-04")
	addReviewFlags(cmd, &iscm, &functional, &departmental)
	return cmd
}

func addReviewFlags(cmd *cobra.Command, iscm, functional, departmental *string) {
	cmd.Flags().StringVar(iscm, "iscm-level", "", "ISCM review level")
	cmd.Flags().StringVar(functional, "functional-level", "", "functional review level")
	cmd.Flags().StringVar(departmental, "department-level", "", "department review level")
}

func reviewFields(iscm, functional, departmental string) map[string]string {
	out := map[string]string{}
	if iscm != "" {
		out["iscmLevel"] = iscm
	}
	if functional != "" {
		out["functionalLevel"] = functional
	}
	if departmental != "" {
		out["departmentLevel"] = departmental
	}
	return out
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "report", Short: "Reports and export"}
	var format string
	show := &cobra.Command{
		Use:       "show [shaping-goals|initiatives|projects]",
		Short:     "Print one report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"shaping-goals", "initiatives", "projects"},
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			t, err := reportTable(args[0], items)
			if err != nil {
				return err
			}
			return report.Render(os.Stdout, t, report.Format(format))
		},
	}
	show.Flags().StringVar(&format, "format", "table", "table, csv or markdown")
	cmd.AddCommand(show)

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Download the report workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := client().Export(cmd.Context(), f); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println("Wrote", out)
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", report.ExportFile, "output file")
	cmd.AddCommand(export)
	return cmd
}

// reportTable decodes API rows into the typed report rows so the CLI renders
// the same columns as the export.
func reportTable(name string, items []map[string]any) (report.Table, error) {
	switch name {
	case "shaping-goals":
		rows, err := decodeRows[report.ShapingGoalRow](items)
		return report.ShapingGoalsTable(rows), err
	case "initiatives":
		rows, err := decodeRows[report.InitiativeRow](items)
		return report.InitiativeTable(rows), err
	case "projects":
		rows, err := decodeRows[report.ProjectRow](items)
		return report.ProjectTable(rows), err
	}
	return report.Table{}, fmt.Errorf("unknown report %q", name)
}

func decodeRows[T any](items []map[string]any) ([]T, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show dashboard totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := client().Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return printJSONOrTable(summary)
		},
	}
}

func delaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delays",
		Short: "List overdue milestones",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := client().Delays(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(items)
			}
			tw := newTable("Kind", "Initiative", "Milestone", "Deadline", "Delay", "Primary")
			for _, it := range items {
				tw.AppendRow(table.Row{it["kind"], it["initiativeName"], it["milestone"], it["deadline"], it["delay"], it["primaryResponsibility"]})
			}
			tw.Render()
			return nil
		},
	}
}

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [list]",
		Short: "Show the selectable option lists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lists := catalog.All()
			if len(args) == 1 {
				opts, ok := lists[args[0]]
				if !ok {
					return fmt.Errorf("unknown list %q", args[0])
				}
				lists = map[string][]catalog.Option{args[0]: opts}
			}
			if viper.GetBool("json") {
				return printJSON(lists)
			}
			names := make([]string, 0, len(lists))
			for name := range lists {
				names = append(names, name)
			}
			sort.Strings(names)
			tw := newTable("List", "Value", "Label")
			for _, name := range names {
				for _, o := range lists[name] {
					tw.AppendRow(table.Row{name, o.Value, o.Label})
				}
			}
			tw.Render()
			return nil
		},
	}
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "Rows written by the sqlite gateway backend, newest first.",
	}
	log.AddCommand(logTailCmd())
	log.AddCommand(logGoalsCmd())
	log.AddCommand(logReviewCmd())
	log.AddCommand(logSchemaCmd())
	return log
}

func logGoalsCmd() *cobra.Command {
	var initiativeID string
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List stored goals rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				goals, err := r.ListGoals(ctx, initiativeID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(goals)
				}
				tw := newTable("Initiative", "Goal Year", "Status", "Driver", "Department")
				for _, g := range goals {
					tw.AppendRow(table.Row{g.InitiativeID, g.GoalYear, g.StatusUpdate, g.Driver, g.Department})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&initiativeID, "initiative", "", "initiative id")
	return cmd
}

func logReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <initiative-id>",
		Short: "Show the stored review_form_metadata row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				rec, err := r.GetReviewMetadata(ctx, args[0])
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("no review row for %s", args[0])
				}
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(rec)
				}
				tw := newTable("Initiative", "ISCM", "Functional", "Department")
				tw.AppendRow(table.Row{rec.InitiativeID, rec.ISCMLevel, rec.FunctionalLevel, rec.DepartmentLevel})
				tw.Render()
				return nil
			})
		},
	}
}

func logSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the event store schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(db.Config{Workspace: viper.GetString("workspace")})
			if err != nil {
				return err
			}
			defer conn.Close()
			applied, latest, err := migrate.Status(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]int{"applied": applied, "latest": latest})
			}
			fmt.Printf("schema version %d of %d\n", applied, latest)
			if applied < latest {
				fmt.Println("pending migrations run on the next gb command that opens the store")
			}
			return nil
		},
	}
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, r repo.Repo) error {
				events, err := r.LatestEvents(ctx, n, evtType, entityID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(events)
				}
				tw := newTable("ID", "TS", "Type", "Entity", "Payload")
				for _, e := range events {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.EntityKind + "/" + e.EntityID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func client() *goalboardsdk.Client {
	c := goalboardsdk.New(viper.GetString("server"))
	c.Session = viper.GetString("session")
	return c
}

func withRepo(ctx context.Context, fn func(context.Context, repo.Repo) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(ctx, conn); err != nil {
		return err
	}
	r := repo.Repo{DB: conn}
	return fn(ctx, r)
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return tw
}

func labelOf(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	return fallback
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
