package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-risk-levels/internal/chart"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/zone"
)

func newTablesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print every metric's level table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := level.Definitions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, def := range defs {
				_, label := chart.Formatter(def.Format)
				fmt.Fprintf(w, "%s (%s)\n", def.Name, def.ID)
				for _, info := range def.Levels.Ordered() {
					limit := "∞"
					if !math.IsInf(info.UpperLimit, 1) {
						limit = "≤ " + label(info.UpperLimit)
					}
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", info.Name, limit, info.Color, info.Detail)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print definitions as JSON")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var metric string
	cmd := &cobra.Command{
		Use:   "classify VALUE",
		Short: "Classify a value against a metric's level table",
		Long:  "Classify a value against a metric's level table. NaN or null classify as Unknown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := level.Lookup(level.Metric(metric))
			if err != nil {
				return err
			}

			var value *float64
			if s := strings.TrimSpace(args[0]); !strings.EqualFold(s, "null") {
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid value %q", args[0])
				}
				value = &v
			}

			info := level.ClassifyOptional(value, def.Levels)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", info.Level, info.Color, info.Detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(level.CaseGrowthRate), "metric id")
	return cmd
}

func newZonesCmd() *cobra.Command {
	var (
		metric string
		lo, hi float64
	)
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Decompose a value range into level regions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := level.Lookup(level.Metric(metric))
			if err != nil {
				return err
			}
			if !(lo < hi) {
				return fmt.Errorf("--min (%g) must be less than --max (%g)", lo, hi)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, r := range zone.ComputeRegions(lo, hi, def.Levels) {
				fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", r.Name, r.ValueFrom, r.ValueTo, r.Color)
			}
			ticks := zone.ComputeTickPositions(lo, hi, def.Levels)
			parts := make([]string, len(ticks))
			for i, t := range ticks {
				parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
			}
			fmt.Fprintf(w, "ticks\t%s\n", strings.Join(parts, ","))
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&metric, "metric", string(level.CaseGrowthRate), "metric id")
	cmd.Flags().Float64Var(&lo, "min", 0, "lower bound of the value range")
	cmd.Flags().Float64Var(&hi, "max", 0, "upper bound of the value range")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}
