package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/scholarfetch/internal/config"
	"github.com/TobiSchelling/scholarfetch/internal/database"
	"github.com/TobiSchelling/scholarfetch/internal/pipeline"
	"github.com/TobiSchelling/scholarfetch/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	strict     bool
	cfg        *config.Config
)

// errRunFailed makes the process exit non-zero under --strict. The failure
// line has already been printed by then.
var errRunFailed = errors.New("scholar fetch failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "scholarfetch",
	Short:         "Fetch a Google Scholar profile into scholar.json",
	Long:          "scholarfetch downloads one Google Scholar profile page, extracts the author, publications and citation metrics, and writes them to a JSON file for a static site.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		if path == "" {
			cfg = config.Default()
		} else if cfg, err = config.Load(path); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// A debug level in config has the same effect as -v.
		if strings.EqualFold(cfg.Logging.Level, "debug") {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Exit with status 1 when the fetch fails")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("scholarfetch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/scholarfetch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set your Scholar user ID and output paths.")
		return nil
	},
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the profile and write the JSON file (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), cmd.OutOrStdout())
	},
}

func runFetch(ctx context.Context, out io.Writer) error {
	// History is best effort; a fetch still runs without it.
	db, err := openDB()
	if err != nil {
		log.Printf("Run history unavailable: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	result := pipeline.New(cfg, db).Run(ctx)
	for _, step := range result.Steps {
		if step.Err == nil {
			log.Printf("%s: %s", step.Name, step.Summary)
		}
	}

	if err := result.Err(); err != nil {
		fmt.Fprintf(out, "⚠️  Scholar fetch failed: %v\n", err)
		if strict {
			return errRunFailed
		}
		return nil
	}

	fmt.Fprintf(out, "✅ Scholar JSON updated with %d publications (fetched at %d).\n",
		len(result.Data.Publications), result.Data.LastFetchedEpoch)
	return nil
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the latest profile in a local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "scholarfetch.db")
	return database.Open(dbPath)
}
