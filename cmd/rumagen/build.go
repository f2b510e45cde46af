package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strct/ruma/internal/cli/config"
	"github.com/strct/ruma/internal/cli/ui"
	"github.com/strct/ruma/internal/compiler"
	"github.com/strct/ruma/internal/compiler/errors"
)

var (
	buildJSON    bool
	buildVerbose bool
)

func init() {
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Output errors in JSON format")
	buildCmd.Flags().BoolVar(&buildVerbose, "verbose", false, "Show detailed build output")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile endpoint definitions to Go code",
	Long:  "Compile all .ruma files in the configured input directory into typed Go codecs",
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		logger := zap.NewNop()
		if buildVerbose {
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

		result, list := compileAll(cfg, logger)
		if list.HasErrors() {
			reportErrors(list)
			return fmt.Errorf("compilation failed")
		}

		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		for filename, content := range result.Files {
			fullPath := filepath.Join(cfg.OutputDir, filename)
			if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			logger.Info("generated", zap.String("file", fullPath))
		}

		ui.Success(os.Stdout, "Generated %d endpoint(s) in %.2fs", len(result.Endpoints), time.Since(startTime).Seconds())
		return nil
	},
}

// compileAll compiles every definition file, merging artifacts and
// diagnostics across files.
func compileAll(cfg *config.Config, logger *zap.Logger) (*compiler.Result, *errors.ErrorList) {
	merged := &compiler.Result{Files: make(map[string]string)}
	list := &errors.ErrorList{}

	files, err := cfg.DefinitionFiles()
	if err != nil {
		list.Add(errors.CompilerError{
			Code:     errors.CodeParse,
			Category: errors.CategorySyntax,
			Severity: errors.SeverityError,
			Message:  err.Error(),
		})
		return merged, list
	}

	for _, file := range files {
		logger.Info("compiling", zap.String("file", file))

		source, err := os.ReadFile(file)
		if err != nil {
			list.Add(errors.CompilerError{
				Code:     errors.CodeParse,
				Category: errors.CategorySyntax,
				Severity: errors.SeverityError,
				Message:  fmt.Sprintf("failed to read %s: %v", file, err),
				File:     file,
			})
			continue
		}

		result, fileList := compiler.CompileSource(file, string(source), cfg.Package)
		list.Add(fileList.Errors...)
		if result == nil {
			continue
		}

		for name, content := range result.Files {
			if _, dup := merged.Files[name]; dup {
				list.Add(errors.CompilerError{
					Code:     errors.CodeParse,
					Category: errors.CategorySyntax,
					Severity: errors.SeverityError,
					Message:  fmt.Sprintf("duplicate endpoint definition for %s", name),
					File:     file,
				})
				continue
			}
			merged.Files[name] = content
		}
		merged.Endpoints = append(merged.Endpoints, result.Endpoints...)

		logger.Info("compiled",
			zap.String("file", file),
			zap.Int("endpoints", len(result.Endpoints)))
	}

	return merged, list
}

func reportErrors(list *errors.ErrorList) {
	if buildJSON {
		out, err := list.ToJSON()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Println(out)
		return
	}
	ui.RenderDiagnostics(os.Stderr, list, ui.DiagnosticOptions{})
}
