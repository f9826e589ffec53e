package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
	"github.com/roach88/convene/internal/store"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	Host       string
	Categories []string
	Database   string
	Watch      bool
	Debounce   time.Duration
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts, Debounce: DefaultDebounce}

	cmd := &cobra.Command{
		Use:   "order <specs-dir>",
		Short: "Resolve the convention order",
		Long: `Resolve the order in which the conventions declared in a specs
directory run for a host type.

Categories restrict which conventions take part. With --db the resolution
is recorded, and with --watch the order is resolved again whenever a
manifest changes.

Exit codes:
  0 - Order resolved
  1 - Resolution failed (e.g. cyclic dependency)
  2 - Command error (invalid paths, database errors, etc.)

Examples:
  convene order ./specs
  convene order ./specs --host unit_test
  convene order ./specs --category Infrastructure --db ./convene.db
  convene order ./specs --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "host type (undefined|live|unit_test)")
	cmd.Flags().StringSliceVar(&opts.Categories, "category", nil, "allowed category (repeatable, default all)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the resolution in this SQLite database")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-resolve when manifests change")

	return cmd
}

// orderRequest is an order invocation with project defaults applied.
type orderRequest struct {
	host       ir.HostType
	categories []ir.Category
	database   string
}

// request merges flags over the project config. Flags win when set.
func (o *OrderOptions) request(cmd *cobra.Command) (orderRequest, error) {
	hostName := o.Project.Host
	if cmd.Flags().Changed("host") {
		hostName = o.Host
	}
	host, err := ir.ParseHostType(hostName)
	if err != nil {
		return orderRequest{}, NewExitError(ExitCommandError, err.Error())
	}

	names := o.Project.Categories
	if cmd.Flags().Changed("category") {
		names = o.Categories
	}
	categories := make([]ir.Category, len(names))
	for i, n := range names {
		categories[i] = ir.Category(n)
	}

	database := o.Project.Database
	if cmd.Flags().Changed("db") {
		database = o.Database
	}

	return orderRequest{host: host, categories: categories, database: database}, nil
}

func runOrder(ctx context.Context, opts *OrderOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	req, err := opts.request(cmd)
	if err != nil {
		return err
	}

	var st *store.Store
	if req.database != "" {
		st, err = store.Open(req.database)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	err = orderOnce(ctx, formatter, logger, st, specsDir, req)
	if !opts.Watch {
		return err
	}
	if err != nil {
		logger.Warn("resolution failed", "error", err)
	}

	return watchSpecs(ctx, specsDir, opts.Debounce, logger, func() {
		if err := orderOnce(ctx, formatter, logger, st, specsDir, req); err != nil {
			logger.Warn("resolution failed", "error", err)
		}
	})
}

// orderOnce loads, resolves, optionally records and prints one resolution.
func orderOnce(
	ctx context.Context,
	formatter *OutputFormatter,
	logger *slog.Logger,
	st *store.Store,
	specsDir string,
	req orderRequest,
) error {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		code, message := firstLoadError(loadErrors)
		_ = formatter.Error(code, message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}
	formatter.VerboseLog("Loaded %d convention(s) from %d CUE file(s)", len(loadResult.Declared), loadResult.FileCount)

	scanned, prepended, appended := ir.Contributions(loadResult.Declared)
	provider := engine.NewProvider(req.host, req.categories, scanned, prepended, appended,
		engine.WithLogger(logger))
	seq, resolveErr := provider.GetAll(req.host)

	r, err := store.NewResolution(loadResult.ManifestHash, req.host, req.categories, seq, resolveErr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to describe resolution", err)
	}

	if st != nil {
		r, err = st.WriteResolution(ctx, store.UUIDv7Generator{}, r)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record resolution", err)
		}
		logger.Debug("recorded resolution", "id", r.ID, "seq", r.Seq)
	}

	if resolveErr != nil {
		code := r.ErrorCode
		if code == "" {
			code = ErrCodeGeneric
		}
		if formatter.IsJSON() {
			_ = formatter.Failure(code, resolveErr.Error(), r)
		} else {
			_ = formatter.Error(code, resolveErr.Error(), nil)
		}
		return WrapExitError(ExitFailure, "resolution failed", resolveErr)
	}

	if formatter.IsJSON() {
		return formatter.Success(r)
	}
	renderResolution(formatter, r)
	return nil
}

// renderResolution prints a resolution as a text table.
func renderResolution(formatter *OutputFormatter, r store.Resolution) {
	w := formatter.Writer

	fmt.Fprintf(w, "Host: %s  Categories: %s\n", r.HostType, categoryLabel(r.Categories))

	rows := make([]table.Row, 0, len(r.Entries))
	for _, e := range r.Entries {
		rows = append(rows, table.Row{e.Position, e.Name, e.Kind, e.HostType, e.Category, e.Priority})
	}
	formatter.Table(table.Row{"#", "Name", "Kind", "Host", "Category", "Priority"}, rows)

	if r.OrderingHash != "" {
		fmt.Fprintf(w, "Ordering hash: %s\n", r.OrderingHash)
	}
	if r.ID != "" {
		fmt.Fprintf(w, "Recorded resolution %s (seq %d)\n", r.ID, r.Seq)
	}
}

func categoryLabel(categories []ir.Category) string {
	if len(categories) == 0 {
		return "all"
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
