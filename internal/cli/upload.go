package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/controller"
)

var (
	uploadChartOut   string
	uploadOutputFile string
	uploadNoProgress bool
)

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file.csv>",
		Short: "Upload a CSV file for analysis",
		Long: `Upload a CSV file to the analysis service and print the report.

The service picks the most numeric column, sums and averages it, and draws
a chart against the first date-like column. Progress is shown on stderr
while the file is sent; the refreshed history follows the report.

Examples:
  salesfc upload sales.csv
  salesfc upload --chart-out chart.png sales.csv
  salesfc upload -o json sales.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().StringVar(&uploadChartOut, "chart-out", "", "save the returned chart PNG to this path")
	cmd.Flags().StringVar(&uploadOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&uploadNoProgress, "no-progress", false, "do not draw the progress bar")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	file, err := api.FileFromPath(args[0])
	if err != nil {
		return err
	}

	ctrl, _, err := newController(cmd, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if cfg.Output.ShowProgress && !uploadNoProgress {
		unsubscribe := ctrl.Subscribe(progressPrinter(cmd.ErrOrStderr(), file.Name))
		defer unsubscribe()
	}

	if err := ctrl.SelectFile(file); err != nil {
		return fmt.Errorf("failed to select %s: %w", file.Name, err)
	}

	report, err := ctrl.Submit(ctx)
	if err != nil {
		// The View carries the message a user should see
		if msg := ctrl.View().Error; msg != "" {
			return fmt.Errorf("%s: %s", file.Name, msg)
		}
		return err
	}

	if uploadChartOut != "" {
		if err := saveChart(cmd, report, uploadChartOut); err != nil {
			return err
		}
	}

	return outputReport(cmd, ctrl.View(), file.Name)
}

// progressPrinter redraws a progress line on w while the upload is in flight
func progressPrinter(w io.Writer, name string) func(controller.View) {
	last := -1
	return func(v controller.View) {
		if !v.Loading {
			if last >= 0 {
				fmt.Fprintln(w)
				last = -1
			}
			return
		}
		if v.Progress == last {
			return
		}
		last = v.Progress
		fmt.Fprint(w, progressLine(name, v.Progress))
	}
}

func saveChart(cmd *cobra.Command, report *api.Report, path string) error {
	png, err := report.ChartPNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Chart saved %s %s (%s)\n",
		GetEmoji("chart"), arrow(), path, humanize.Bytes(uint64(len(png))))
	return nil
}

// outputReport prints the report followed by the current history
func outputReport(cmd *cobra.Command, view controller.View, source string) error {
	f, err := getFormatter()
	if err != nil {
		return err
	}

	report, err := f.FormatReport(view.Report, source)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	// Structured formats carry one document
	if format := getOutputFormat(); format != "" && format != "text" {
		return writeOutput(cmd, report, uploadOutputFile)
	}

	history, err := f.FormatHistory(view.History)
	if err != nil {
		return fmt.Errorf("failed to format history: %w", err)
	}
	output := append(report, '\n')
	output = append(output, history...)
	return writeOutput(cmd, output, uploadOutputFile)
}

