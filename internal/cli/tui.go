package cli

import (
	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/controller"
	"github.com/yildizm/SalesForecaster/internal/logger"
	"github.com/yildizm/SalesForecaster/internal/ui"
)

var (
	tuiTheme    string
	tuiStartDir string
)

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Long: `Open the interactive terminal interface.

Pick a CSV with the file browser, upload it with live progress, read the
report, and browse, filter or delete past analyses. Press ? for keys.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}

	cmd.Flags().StringVar(&tuiTheme, "theme", "", "color theme (default, high-contrast, minimal)")
	cmd.Flags().StringVar(&tuiStartDir, "dir", "", "directory the file browser opens in")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	opts := ui.Options{
		Theme:    cfg.UI.Theme,
		StartDir: cfg.UI.StartDir,
	}
	if tuiTheme != "" {
		opts.Theme = tuiTheme
	}
	if tuiStartDir != "" {
		opts.StartDir = tuiStartDir
	}

	confirmer := ui.NewConfirmer()
	var deleteConfirmer controller.Confirmer = confirmer
	if !cfg.UI.ConfirmDelete {
		deleteConfirmer = controller.AutoConfirm
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	opts.ServerURL = client.BaseURL()

	// Logging stays off under the alternate screen unless --verbose
	log := logger.Discard()
	if isVerbose() {
		log = newLogger(cmd, "controller")
	}
	ctrl := controller.New(client,
		controller.WithLogger(log),
		controller.WithConfirmer(deleteConfirmer),
	)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return ui.Run(ctx, ctrl, confirmer, opts)
}
