package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/gradabroad/internal/config"
	"github.com/JonMunkholm/gradabroad/internal/core"
	"github.com/JonMunkholm/gradabroad/internal/logging"
	"github.com/JonMunkholm/gradabroad/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// cliJWTSecret fills JWT_SECRET when unset; the CLI never verifies tokens.
const cliJWTSecret = "csvimport-does-not-verify-tokens"

// loadConfig reads the environment with overrides taking precedence.
func loadConfig(overrides map[string]string) (*config.Config, error) {
	return config.LoadWith(func(key string) string {
		if v := overrides[key]; v != "" {
			return v
		}
		if v := os.Getenv(key); v != "" {
			return v
		}
		if key == "JWT_SECRET" {
			return cliJWTSecret
		}
		return ""
	})
}

func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections and their columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tCOLUMNS")
			for _, def := range core.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Info.Name, def.Info.Label, def.Info.SchemaHint())
			}
			return tw.Flush()
		},
	}
}

// readFile decodes path by its extension.
func readFile(path string) (core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Document{}, withCode(exitUsage, err)
	}
	defer f.Close()

	doc, err := core.DecodeFile(filepath.Base(path), f)
	if err != nil {
		return core.Document{}, withCode(exitUsage, err)
	}
	return doc, nil
}

type previewOptions struct {
	collection string
	delimiter  string
	asJSON     bool
}

func newPreviewCmd() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Validate a file against a collection without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.collection, "collection", "c", "", "Target collection (required)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Checklist delimiter (default from IMPORT_CHECKLIST_DELIMITER or ;)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the preview as JSON")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

func runPreview(out io.Writer, path string, opts previewOptions) error {
	doc, err := readFile(path)
	if err != nil {
		return err
	}

	delim := opts.delimiter
	if delim == "" {
		delim = os.Getenv("IMPORT_CHECKLIST_DELIMITER")
	}
	svc := core.NewService(nil, config.ImportConfig{ChecklistDelimiter: delim})

	preview, err := svc.Preview(core.Collection(opts.collection), filepath.Base(path), doc)
	if err != nil {
		return withCode(exitUsage, err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}

	fmt.Fprintf(out, "collection: %s\n", preview.Collection)
	fmt.Fprintf(out, "expected:   %s\n", preview.SchemaHint)
	fmt.Fprintf(out, "headers:    %s\n", strings.Join(preview.Headers, ", "))
	fmt.Fprintf(out, "rows:       %d\n", preview.RowCount)
	for _, e := range preview.Validation.HeaderErrors {
		fmt.Fprintf(out, "header: %s\n", e.Error())
	}
	for _, ri := range preview.Validation.Rows {
		fmt.Fprintf(out, "line %d: %s\n", ri.Line, ri.Reason())
	}
	if preview.Validation.Valid() {
		fmt.Fprintln(out, "ok")
	}
	return nil
}

type importOptions struct {
	collection  string
	owner       string
	mode        string
	databaseURL string
	batchSize   int
	delimiter   string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a file into a collection for one owner",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(strings.TrimSpace(opts.owner)); err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --owner: %w", err))
			}
			if _, err := core.ParseImportMode(opts.mode); err != nil {
				return withCode(exitUsage, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.collection, "collection", "c", "", "Target collection (required)")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "Owner UUID for rows without a user_id; rows naming another owner are kept (required)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(core.ModePerRow), "Write mode: per_row or atomic")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "Database URL (default from DATABASE_URL)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Rows per insert batch (default from IMPORT_BATCH_SIZE)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Checklist delimiter (default from IMPORT_CHECKLIST_DELIMITER)")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func (o importOptions) overrides() map[string]string {
	m := map[string]string{
		"DATABASE_URL":               o.databaseURL,
		"IMPORT_CHECKLIST_DELIMITER": o.delimiter,
	}
	if o.batchSize > 0 {
		m["IMPORT_BATCH_SIZE"] = strconv.Itoa(o.batchSize)
	}
	return m
}

func runImport(cmd *cobra.Command, path string, opts importOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.overrides())
	if err != nil {
		return withCode(exitUsage, err)
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	if _, err := core.Lookup(opts.collection); err != nil {
		return withCode(exitUsage, err)
	}
	mode, _ := core.ParseImportMode(opts.mode)

	doc, err := readFile(path)
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	defer pool.Close()

	db := store.New(pool)
	if err := db.Ping(ctx); err != nil {
		return withCode(exitDB, fmt.Errorf("ping: %w", err))
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			return withCode(exitDB, err)
		}
	}

	svc := core.NewService(db, cfg.Import)
	// The operator holds database credentials, so rows may name any owner.
	caller := core.Caller{OwnerID: strings.TrimSpace(opts.owner), Trusted: true}
	result, err := svc.Import(ctx, caller, core.ImportRequest{
		Collection: core.Collection(opts.collection),
		Document:   doc,
		FileName:   filepath.Base(path),
		Mode:       mode,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), core.StatusLine(nil, err))
		return withCode(exitFailed, err)
	}

	return reportResult(cmd.OutOrStdout(), result)
}

// reportResult prints the status line and each failed row.
func reportResult(out io.Writer, result *core.ImportResult) error {
	fmt.Fprintln(out, core.StatusLine(result, nil))
	for _, f := range result.Failed {
		fmt.Fprintf(out, "  line %d: %s\n", f.Line, f.Reason)
	}
	if result.Error != "" || len(result.Failed) > 0 {
		return withCode(exitFailed, fmt.Errorf("%d of %d rows not imported", result.TotalRows-result.Inserted, result.TotalRows))
	}
	return nil
}
