// Command chartctl renders chart files from spreadsheet or JSON series.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "chartctl",
		Short:        "Render historical and forecast series as chart geometry, SVG or PNG",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
