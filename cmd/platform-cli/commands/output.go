package commands

import (
	"github.com/spf13/cobra"

	"github.com/DrSkyle/platform-cli/pkg/engine/report"
)

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", string(report.FormatText), "Output format: text, json, yaml or hcl (Terraform import blocks)")
}

// write renders a listing in the requested format. text calls the printer view.
func (a *app) write(format report.Format, v any, text func(), imports []report.ImportTarget) error {
	out := a.printer.Writer()
	switch format {
	case report.FormatJSON:
		return report.WriteJSON(out, v)
	case report.FormatYAML:
		return report.WriteYAML(out, v)
	case report.FormatHCL:
		return report.WriteImports(out, imports)
	default:
		text()
		return nil
	}
}
