package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/controller"
)

var (
	historyOutputFile string
	deleteYes         bool
	downloadSave      string
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analyses",
		Long: `Fetch and print the most recent analyses stored by the service, newest first.

Examples:
  salesfc history
  salesfc history -o json
  salesfc history -o csv --output-file history.csv`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().StringVar(&historyOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctrl, _, err := newController(cmd, nil)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}

	f, err := getFormatter()
	if err != nil {
		return err
	}
	output, err := f.FormatHistory(ctrl.View().History)
	if err != nil {
		return fmt.Errorf("failed to format history: %w", err)
	}
	return writeOutput(cmd, output, historyOutputFile)
}

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an analysis from history",
		Long: `Delete one analysis from the service's history.

You are asked to confirm unless --yes is given or ui.confirm_delete is
false in the configuration.

Examples:
  salesfc delete 3f2b9c1e-...
  salesfc delete --yes 3f2b9c1e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	var confirmer controller.Confirmer = controller.AutoConfirm
	if !deleteYes && GetGlobalConfig().UI.ConfirmDelete {
		confirmer = newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	ctrl, _, err := newController(cmd, confirmer)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := ctrl.Delete(ctx, id); err != nil {
		if errors.Is(err, controller.ErrDeleteDeclined) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Delete cancelled")
			return nil
		}
		if msg := ctrl.View().DeleteError; msg != "" {
			return fmt.Errorf("%s: %s", id, msg)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", GetEmoji("trash"), id)
	if isVerbose() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d analyses remain\n", len(ctrl.View().History))
	}
	return nil
}

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Print or save the PDF report of an analysis",
		Long: `Print the PDF download link of an analysis, or fetch it with --save.

Examples:
  salesfc download 3f2b9c1e-...
  salesfc download --save report.pdf 3f2b9c1e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runDownload,
	}

	cmd.Flags().StringVar(&downloadSave, "save", "", "save the PDF to this path instead of printing the link")

	return cmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	id := args[0]

	ctrl, client, err := newController(cmd, nil)
	if err != nil {
		return err
	}

	if downloadSave == "" {
		fmt.Fprintln(cmd.OutOrStdout(), ctrl.DownloadURL(id))
		return nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	path := filepath.Clean(downloadSave)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := client.Download(ctx, id, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to download %s: %w", id, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Saved %s %s (%s)\n",
		GetEmoji("download"), arrow(), path, humanize.Bytes(uint64(n)))
	return nil
}
