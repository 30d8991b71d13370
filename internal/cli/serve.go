package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/devserver"
	"github.com/yildizm/SalesForecaster/internal/monitor"
)

var (
	serveListen       string
	serveHistoryLimit int
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local analysis service",
		Long: `Run an in-memory copy of the analysis service for local use and demos.

It answers the same endpoints the client uses: upload and analyze a CSV,
list and delete history, and download a PDF report. Data is lost when the
server stops.

Examples:
  salesfc serve
  salesfc serve --listen :9000
  salesfc --server http://127.0.0.1:9000 tui`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default from config, 127.0.0.1:8000)")
	cmd.Flags().IntVar(&serveHistoryLimit, "history-limit", 0, "records returned by the history endpoint (default from config, 5)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	scfg := GetGlobalConfig().DevServer
	if serveListen != "" {
		scfg.Listen = serveListen
	}
	if serveHistoryLimit > 0 {
		scfg.HistoryLimit = serveHistoryLimit
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	server := devserver.New(scfg, newLogger(cmd, "devserver"))
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Serving on http://%s (Ctrl+C to stop)\n", GetEmoji("server"), scfg.Listen)
	if err := server.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Session summary\n", GetEmoji("report"))
	fmt.Fprint(cmd.ErrOrStderr(), monitor.FormatText(server.Metrics().Snapshot()))
	return nil
}
