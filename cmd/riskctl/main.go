// Command riskctl inspects the COVID risk-level tables offline: it classifies
// values, decomposes value ranges into level zones, renders SVG charts from
// series files, and generates deterministic fixture data.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "riskctl",
		Short:        "Inspect and exercise COVID risk-level tables",
		SilenceUsage: true,
	}
	root.AddCommand(
		newTablesCmd(),
		newClassifyCmd(),
		newZonesCmd(),
		newChartCmd(),
		newMockCmd(),
	)
	return root
}
