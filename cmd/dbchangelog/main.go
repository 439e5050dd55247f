package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/internal/config"
	"github.com/koba/db-changelog/internal/database"
	"github.com/koba/db-changelog/internal/diff"
	"github.com/koba/db-changelog/internal/generator"
	"github.com/koba/db-changelog/internal/schema"
	"github.com/koba/db-changelog/internal/snapshot"
	"github.com/koba/db-changelog/serializer"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger

	tables    []string
	limit     int
	outputDir string
	output    string
	pkgName   string
	connect   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbchangelog",
	Short: "Database changelog tool",
	Long: `A tool to snapshot databases, generate changelogs from live schemas or
from the differences between snapshots, and check changelog files.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [name]",
	Short: "Create a database snapshot",
	Long:  `Create a snapshot of the current database state.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a changelog from the database schema",
	Long:  `Generate a changelog that creates the tables of the current database.`,
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot1> <snapshot2>",
	Short: "Compare two snapshots",
	Long: `Compare two database snapshots and display the differences.
With --output, also write a changelog migrating snapshot1 to snapshot2.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a changelog file",
	Long: `Parse a changelog file and list its changesets.
With --connect, also set up and validate its custom changes against the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file (env: DBCHANGELOG_CONFIG)")
	flags.String("author", "", "Author of generated changesets")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("properties-file", "", "YAML file of changelog properties")

	snapshotCmd.Flags().StringSliceVar(&tables, "tables", nil, "Comma-separated list of tables to snapshot (default: all tables)")
	snapshotCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows per table (default: unlimited)")
	snapshotCmd.Flags().StringVar(&outputDir, "output-dir", "./snapshots", "Output directory for snapshots")

	generateCmd.Flags().StringSliceVar(&tables, "tables", nil, "Comma-separated list of tables (default: all tables)")
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "Changelog file to write (default: stdout)")
	generateCmd.Flags().StringVar(&pkgName, "package", "", "Package name of the changelog file (default: its directory name)")

	diffCmd.Flags().StringVarP(&output, "output", "o", "", "Changelog file to write")
	diffCmd.Flags().StringVar(&pkgName, "package", "", "Package name of the changelog file (default: its directory name)")

	checkCmd.Flags().BoolVar(&connect, "connect", false, "Validate custom changes against the database")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(checkCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG")
	}
	var err error
	cfg, err = config.Load(path, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err = cfg.Logger(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logger)
	return nil
}

// openDatabase connects to the configured database. The caller closes it.
func openDatabase(ctx context.Context) (database.Database, database.Config, error) {
	dbConfig, err := cfg.Database()
	if err != nil {
		return nil, dbConfig, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		return nil, dbConfig, fmt.Errorf("failed to create database: %w", err)
	}
	if err := db.Connect(ctx); err != nil {
		return nil, dbConfig, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("connected", "type", db.Type(), "host", dbConfig.Host, "database", dbConfig.Database)
	return db, dbConfig, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, dbConfig, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	outputPath := filepath.Join(outputDir, snapshotFileName(args, dbConfig.Database, time.Now()))

	fmt.Printf("Creating snapshot: %s\n", outputPath)
	if err := snapshot.Create(ctx, db, tables, outputPath, limit); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	fmt.Printf("Snapshot created successfully: %s\n", outputPath)
	return nil
}

// snapshotFileName returns the given name with a .db suffix, or <database>-<timestamp>.db
func snapshotFileName(args []string, dbName string, now time.Time) string {
	if len(args) > 0 {
		name := args[0]
		if !strings.HasSuffix(name, ".db") {
			name += ".db"
		}
		return name
	}
	return fmt.Sprintf("%s-%s.db", filepath.Base(dbName), now.Format("2006-01-02-15-04-05"))
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	db, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	names := tables
	if len(names) == 0 {
		if names, err = db.GetAllTables(ctx); err != nil {
			return fmt.Errorf("failed to get all tables: %w", err)
		}
	}
	schemas := make([]*schema.TableSchema, 0, len(names))
	for _, name := range names {
		s, err := db.GetTableSchema(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to get schema of %s: %w", name, err)
		}
		schemas = append(schemas, s)
	}

	cl, err := generator.New(cfg.Author, db.Type()).FromSchemas(changelogPath(), schemas)
	if err != nil {
		return fmt.Errorf("failed to generate changelog: %w", err)
	}
	return writeChangeLog(cl)
}

func runDiff(_ *cobra.Command, args []string) error {
	snapshot1Path := args[0]
	snapshot2Path := args[1]

	fmt.Printf("Loading snapshot: %s\n", snapshot1Path)
	snap1, err := snapshot.Load(snapshot1Path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot1: %w", err)
	}

	fmt.Printf("Loading snapshot: %s\n", snapshot2Path)
	snap2, err := snapshot.Load(snapshot2Path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot2: %w", err)
	}
	if snap1.DBType() != snap2.DBType() {
		logger.Warn("snapshots come from different database types", "snapshot1", snap1.DBType(), "snapshot2", snap2.DBType())
	}

	fmt.Printf("\n=== Comparing snapshots ===\n\n")
	result := diff.Compare(snap1, snap2)
	if err := diff.Display(os.Stdout, result); err != nil {
		return err
	}

	if output == "" {
		return nil
	}
	if result.Empty() {
		fmt.Printf("No changelog written.\n")
		return nil
	}
	cl, err := generator.New(cfg.Author, snap2.DBType()).FromDiff(changelogPath(), result)
	if err != nil {
		return fmt.Errorf("failed to generate changelog: %w", err)
	}
	return writeChangeLog(cl)
}

func changelogPath() string {
	if output != "" {
		return filepath.ToSlash(output)
	}
	return "changelog.go"
}

// writeChangeLog writes to --output, or to stdout when it is not set
func writeChangeLog(cl *changelog.ChangeLog) error {
	var opts []serializer.Option
	if pkgName != "" {
		opts = append(opts, serializer.WithPackage(pkgName))
	}
	s := serializer.New(opts...)

	if output == "" {
		return s.Write(cl.ChangeSets, nopCloser{os.Stdout})
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := s.WriteFile(output, cl.ChangeSets); err != nil {
		return err
	}
	fmt.Printf("Changelog written: %s (%d changesets)\n", output, len(cl.ChangeSets))
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
