package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/watch"
)

var (
	watchPattern  string
	watchDebounce time.Duration
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Upload CSV files as they appear in a folder",
		Long: `Watch a directory and upload every matching file that is created or
changed. Files are uploaded one at a time once they have stopped changing
for the debounce period. Press Ctrl+C to stop watching.

Examples:
  salesfc watch ./exports
  salesfc watch --pattern 'sales-*.csv' --debounce 2s ./exports`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchPattern, "pattern", "p", "", "file name glob (default from config, *.csv)")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before upload (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	wcfg := GetGlobalConfig().Watch
	if len(args) == 1 {
		wcfg.Directory = args[0]
	}
	if watchPattern != "" {
		wcfg.Pattern = watchPattern
	}
	if cmd.Flag("debounce").Changed {
		wcfg.Debounce = watchDebounce
	}

	ctrl, _, err := newController(cmd, nil)
	if err != nil {
		return err
	}

	w, err := watch.New(wcfg, ctrl,
		watch.WithLogger(newLogger(cmd, "watch")),
		watch.WithResultHandler(resultPrinter(cmd.OutOrStdout())),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Watching %s (Ctrl+C to stop)\n", GetEmoji("watch"), w.Dir())
	if err := w.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Stopped watching\n", GetEmoji("door"))
	return nil
}

// resultPrinter prints one line per watched upload
func resultPrinter(w io.Writer) func(watch.Result) {
	var mu sync.Mutex
	return func(r watch.Result) {
		mu.Lock()
		defer mu.Unlock()

		name := filepath.Base(r.Path)
		timestamp := time.Now().Format("15:04:05")
		if r.Err != nil {
			msg := r.Err.Error()
			if serverMsg, ok := api.ServerMessage(r.Err); ok {
				msg = serverMsg
			}
			fmt.Fprintf(w, "[%s] %s %s: %s\n", timestamp, GetEmoji("error"), name, msg)
			return
		}
		fmt.Fprintf(w, "[%s] %s %s %s total %s, average %s (%s)\n", timestamp, GetEmoji("success"), name, arrow(),
			formatFigure(r.Report.Total), formatFigure(r.Report.Average), r.Report.UsedColumn)
	}
}

// formatFigure formats an amount with thousands separators and two decimals
func formatFigure(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
