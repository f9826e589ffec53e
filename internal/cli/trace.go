package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/convene/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	ID       string // optional - show one resolution
	Limit    int
	Filter   store.Filter
}

// TraceResult holds the list output of the trace command.
type TraceResult struct {
	Resolutions []store.Resolution `json:"resolutions"`
	Total       int                `json:"total"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded resolutions",
		Long: `Inspect the resolutions recorded by "convene order --db".

Without --id, lists recorded resolutions oldest first, optionally
narrowed by host type, status or manifest hash. With --id, shows one
resolution including its ordered entries.

Examples:
  convene trace --db ./convene.db
  convene trace --db ./convene.db --limit 5
  convene trace --db ./convene.db --host live --status failed
  convene trace --db ./convene.db --id 0190f5c2-...
  convene trace --db ./convene.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from project config)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "resolution ID to show")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent resolutions (0 = all)")
	cmd.Flags().StringVar(&opts.Filter.Host, "host", "", "only resolutions for this host type")
	cmd.Flags().StringVar((*string)(&opts.Filter.Status), "status", "", "only resolutions with this status (ok|failed)")
	cmd.Flags().StringVar(&opts.Filter.ManifestHash, "manifest", "", "only resolutions of this manifest hash")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	database := opts.Database
	if database == "" {
		database = opts.Project.Database
	}
	if database == "" {
		return NewExitError(ExitCommandError, "no database: pass --db or set db in the project config")
	}

	// Opening would create a fresh database, which has nothing to trace
	if _, err := os.Stat(database); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", database), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.ID != "" {
		r, err := st.ReadResolution(ctx, opts.ID)
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("resolution not found: %s", opts.ID), nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("resolution not found: %s", opts.ID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read resolution", err)
		}
		if formatter.IsJSON() {
			return formatter.Success(r)
		}
		renderRecorded(formatter, r)
		return nil
	}

	resolutions, err := st.FindResolutions(ctx, opts.Filter, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list resolutions", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(TraceResult{Resolutions: resolutions, Total: len(resolutions)})
	}

	if len(resolutions) == 0 {
		fmt.Fprintln(formatter.Writer, "No resolutions recorded.")
		return nil
	}

	rows := make([]table.Row, 0, len(resolutions))
	for _, r := range resolutions {
		rows = append(rows, table.Row{r.Seq, r.ID, r.HostType, categoryLabel(r.Categories), r.Status, r.ErrorCode})
	}
	formatter.Table(table.Row{"Seq", "ID", "Host", "Categories", "Status", "Error"}, rows)
	return nil
}

// renderRecorded prints one recorded resolution.
func renderRecorded(formatter *OutputFormatter, r store.Resolution) {
	w := formatter.Writer
	fmt.Fprintf(w, "Resolution %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "Status: %s\n", r.Status)
	fmt.Fprintf(w, "Manifest hash: %s\n", r.ManifestHash)
	fmt.Fprintf(w, "Engine %s, IR %s\n", r.EngineVersion, r.IRVersion)

	if r.Status == store.StatusFailed {
		fmt.Fprintf(w, "Error [%s]: %s\n", r.ErrorCode, r.Error)
		return
	}

	r.ID = "" // already printed above

	renderResolution(formatter, r)
}
