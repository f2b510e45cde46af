package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strct/ruma/internal/cli/config"
	"github.com/strct/ruma/internal/cli/ui"
	"github.com/strct/ruma/internal/watch"
)

var watchVerbose bool

func init() {
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Show verbose output")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate code whenever definitions change",
	Long: `Monitor the input directory for .ruma changes and regenerate the Go
codecs on every save. Compilation errors are reported without stopping the
watcher.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if watchVerbose {
			dev, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = dev
		}
		defer logger.Sync()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.InputDir); err != nil {
			return fmt.Errorf("input directory %q not found - are you in a rumagen project?", cfg.InputDir)
		}

		rebuild := func(changed []string) error {
			start := time.Now()

			result, list := compileAll(cfg, logger)
			if list.HasErrors() {
				ui.RenderDiagnostics(os.Stderr, list, ui.DiagnosticOptions{})
				return fmt.Errorf("compilation failed")
			}

			if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for filename, content := range result.Files {
				if err := os.WriteFile(filepath.Join(cfg.OutputDir, filename), []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", filename, err)
				}
			}

			ui.Success(os.Stdout, "Regenerated %d endpoint(s) in %.2fs", len(result.Endpoints), time.Since(start).Seconds())
			return nil
		}

		watcher, err := watch.NewFileWatcher(cfg.InputDir, logger, rebuild)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}

		// Full build up front so the output starts in sync
		if err := rebuild(nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("\nWatching %s (Ctrl+C to stop)\n", cfg.InputDir)

		<-sigChan

		fmt.Println("\nShutting down...")
		return watcher.Stop()
	},
}
