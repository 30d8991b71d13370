package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/SalesForecaster/internal/api"
	"github.com/yildizm/SalesForecaster/internal/controller"
	"github.com/yildizm/SalesForecaster/internal/formatter"
	"github.com/yildizm/SalesForecaster/internal/logger"
)

// newLogger creates a logger gated on --verbose writing to the command's stderr
func newLogger(cmd *cobra.Command, component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose).WithWriter(cmd.ErrOrStderr())
}

// newClient builds the transport from the loaded configuration
func newClient(cmd *cobra.Command) (*api.Client, error) {
	cfg := GetGlobalConfig()

	client, err := api.New(&api.Config{
		BaseURL:   cfg.Server.BaseURL,
		Timeout:   cfg.Server.Timeout,
		UserAgent: cfg.Server.UserAgent,
	}, api.WithLogger(newLogger(cmd, "api")))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// newController wires a controller over a fresh client. A nil confirmer
// approves every delete.
func newController(cmd *cobra.Command, confirmer controller.Confirmer) (*controller.Controller, *api.Client, error) {
	client, err := newClient(cmd)
	if err != nil {
		return nil, nil, err
	}

	ctrl := controller.New(client,
		controller.WithLogger(newLogger(cmd, "controller")),
		controller.WithConfirmer(confirmer),
	)
	return ctrl, client, nil
}

// signalContext derives a context cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// getFormatter returns the formatter for the active --output format
func getFormatter() (formatter.Formatter, error) {
	return formatter.New(getOutputFormat(), useColor())
}

// writeOutput writes output to path, or to the command's stdout when path is empty
func writeOutput(cmd *cobra.Command, output []byte, path string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, path); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Output saved to: %s\n", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}

// promptConfirmer asks on a line-oriented reader, typically stdin
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm prints prompt and reads a y/N answer. Anything but y or yes declines.
func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	select {
	case a := <-answers:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
