package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/ir"
	"github.com/codewithboateng/minepack/internal/reporting"
	"github.com/codewithboateng/minepack/internal/shared"
	"github.com/codewithboateng/minepack/internal/storage"
)

var (
	flagDB     string
	flagOutDir string
	flagRunID  string
	flagBase   string
	flagHead   string
	flagLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded validation runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a recorded run as JSON and HTML",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the findings of two recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

func init() {
	for _, c := range []*cobra.Command{runsCmd, reportCmd, diffCmd, serveCmd, userAddCmd} {
		c.Flags().StringVar(&flagDB, "db", "", "SQLite history database")
	}
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "number of runs to list")

	reportCmd.Flags().StringVar(&flagRunID, "run", "", "run id (default latest)")
	reportCmd.Flags().StringVar(&flagOutDir, "out", "", "output directory")

	diffCmd.Flags().StringVar(&flagBase, "base", "", "base run id")
	diffCmd.Flags().StringVar(&flagHead, "head", "", "head run id")
	diffCmd.Flags().StringVar(&flagOutDir, "out", "", "output directory")
	_ = diffCmd.MarkFlagRequired("base")
	_ = diffCmd.MarkFlagRequired("head")
}

func openHistory(cfg shared.Config) (*storage.DB, error) {
	dsn := firstNonEmpty(flagDB, cfg.Database.DSN)
	if dsn == "" {
		return nil, errors.New("no history database configured (--db or database.dsn)")
	}
	return storage.Open(dsn)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.ListRuns(max(flagLimit, 1), 0)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tERRORS\tWARNINGS\tINFO\tEXIT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Errors, r.Warnings, r.Info, r.ExitCode)
	}
	return tw.Flush()
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var run ir.Run
	if flagRunID != "" {
		run, err = db.LoadRun(flagRunID)
	} else {
		run, err = db.LoadLatestRun()
	}
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	outDir := firstNonEmpty(flagOutDir, cfg.Reporting.OutDir)
	jsonPath, err := reporting.WriteRunJSON(outDir, &run)
	if err != nil {
		return err
	}
	htmlPath, err := reporting.WriteHTML(outDir, &run)
	if err != nil {
		return err
	}
	log.Info("report rendered", "run", run.ID, "json", jsonPath, "html", htmlPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Report OK\n  Run: %s\n  JSON: %s\n  HTML: %s\n", run.ID, jsonPath, htmlPath)
	return nil
}

func runDiff(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	base, err := db.LoadRun(flagBase)
	if err != nil {
		return fmt.Errorf("load base run %s: %w", flagBase, err)
	}
	head, err := db.LoadRun(flagHead)
	if err != nil {
		return fmt.Errorf("load head run %s: %w", flagHead, err)
	}
	d := reporting.CompareRuns(&base, &head)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Diff %s -> %s\n  new: %d  removed: %d  changed: %d\n",
		base.ID, head.ID, d.Summary.NewCount, d.Summary.RemovedCount, d.Summary.ChangedCount)
	if outDir := firstNonEmpty(flagOutDir, cfg.Reporting.OutDir); outDir != "" {
		path, err := reporting.WriteDiffJSON(outDir, &base, &head)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  JSON: %s\n", path)
	}
	return nil
}
