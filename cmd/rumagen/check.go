package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strct/ruma/internal/cli/config"
	"github.com/strct/ruma/internal/cli/ui"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output errors in JSON format")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate endpoint definitions without generating code",
	Long:  "Parse and validate all .ruma files, reporting every diagnostic without writing artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		result, list := compileAll(cfg, zap.NewNop())
		if list.HasErrors() {
			if checkJSON {
				out, err := list.ToJSON()
				if err != nil {
					return err
				}
				fmt.Println(out)
			} else {
				ui.RenderDiagnostics(os.Stderr, list, ui.DiagnosticOptions{})
			}
			return fmt.Errorf("validation failed")
		}

		ui.Success(os.Stdout, "%d endpoint(s) valid", len(result.Endpoints))
		return nil
	},
}
