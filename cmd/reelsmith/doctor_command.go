package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"reelsmith/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the snapshot backend, and service credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, live)
			failed := 0
			for _, r := range results {
				if !r.Passed {
					failed++
				}
			}
			err = ctx.emit(cmd, results, func(w io.Writer) error {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{r.Name, colorStatus(w, statusWord(r.Passed)), r.Detail})
				}
				_, err := fmt.Fprintln(w, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
				return err
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "Send a health request to the language model")
	return cmd
}

func statusWord(passed bool) string {
	if passed {
		return "ready"
	}
	return "failed"
}
