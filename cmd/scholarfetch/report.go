package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/scholarfetch/internal/database"
	"github.com/TobiSchelling/scholarfetch/internal/scholar"
)

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent fetch runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.GetRecentRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Fetch the profile with: scholarfetch")
			return nil
		}
		renderHistory(os.Stdout, runs, stats)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

func renderHistory(w io.Writer, runs []database.Run, stats *database.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Started", "Status", "HTTP", "Publications", "Error"})

	for _, r := range runs {
		status := r.Status
		if status == database.StatusFailed {
			status = text.FgRed.Sprint(status)
		}
		httpStatus := "-"
		if r.HTTPStatus != 0 {
			httpStatus = fmt.Sprint(r.HTTPStatus)
		}
		errMsg := ""
		if r.Error != nil {
			errMsg = *r.Error
		}
		t.AppendRow(table.Row{database.FormatDisplay(r.StartedAt), status, httpStatus, r.PublicationCount, errMsg})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Error", WidthMax: 60},
	})
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d runs", stats.TotalRuns),
		fmt.Sprintf("%d ok / %d failed", stats.SuccessfulRuns, stats.FailedRuns),
	})
	t.Render()
}

// --- show command ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest successfully fetched profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetLatestSuccessfulRun()
		if err != nil {
			return fmt.Errorf("loading latest run: %w", err)
		}
		if run == nil || run.ResultJSON == nil {
			fmt.Println("No successful run recorded yet.")
			return nil
		}

		var result scholar.FetchResult
		if err := json.Unmarshal([]byte(*run.ResultJSON), &result); err != nil {
			return fmt.Errorf("decoding run %s: %w", run.ID, err)
		}
		renderProfile(os.Stdout, &result)
		return nil
	},
}

func renderProfile(w io.Writer, r *scholar.FetchResult) {
	author := table.NewWriter()
	author.SetOutputMirror(w)
	author.SetStyle(table.StyleRounded)
	author.SetTitle(r.Author.Name)
	author.AppendRows([]table.Row{
		{"Position", r.Author.Position},
		{"Email", r.Author.Email},
		{"Departments", r.Author.Departments},
		{"Fetched", r.LastFetched},
	})
	author.Render()

	if rows := r.Metrics.Rows(); len(rows) > 0 {
		metrics := table.NewWriter()
		metrics.SetOutputMirror(w)
		metrics.SetStyle(table.StyleRounded)
		metrics.AppendHeader(table.Row{"Metric", "All", "Since 2017"})
		for _, m := range rows {
			metrics.AppendRow(table.Row{m.Label, m.Value.All, m.Value.Since2017})
		}
		metrics.Render()
	}

	pubs := table.NewWriter()
	pubs.SetOutputMirror(w)
	pubs.SetStyle(table.StyleRounded)
	pubs.AppendHeader(table.Row{"#", "Year", "Title", "Venue"})
	for i, p := range r.Publications {
		pubs.AppendRow(table.Row{i + 1, p.Year, p.Title, p.Publication})
	}
	pubs.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 60},
		{Name: "Venue", WidthMax: 40},
	})
	pubs.Render()
}
