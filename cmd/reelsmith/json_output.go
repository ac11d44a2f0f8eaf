package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// emit prints v as indented JSON when --json is set and otherwise hands the
// command's stdout to human.
func (c *commandContext) emit(cmd *cobra.Command, v any, human func(io.Writer) error) error {
	out := cmd.OutOrStdout()
	if !c.jsonOutput() {
		return human(out)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
