package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"yieldScope/internal/chart"
	"yieldScope/internal/config"
	"yieldScope/internal/ilmath"
)

func runCalc(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCalc(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	result, err := ilmath.Valuate(
		ilmath.PoolPosition{Token0Amount: cfg.Token0, Token1Amount: cfg.Token1, InitialPrice: cfg.InitialPrice},
		ilmath.PriceScenario{CurrentPrice: cfg.CurrentPrice},
	)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Metric", "Value")
	table.Append("Token 0 in pool", formatFloat(result.Token0InPool, 6))
	table.Append("Token 1 in pool", formatFloat(result.Token1InPool, 6))
	table.Append("Pool value", formatFloat(result.PoolValue, 2))
	table.Append("Hold value", formatFloat(result.HoldValue, 2))
	table.Append("Impermanent loss %", formatFloat(result.ImpermanentLossPercent, 4))
	table.Append("Break-even fees %", formatFloat(result.BreakEvenFeesPercent, 4))
	if cfg.HasAPY {
		table.Append("Days to breakeven", formatDays(ilmath.DaysToBreakeven(result.ImpermanentLossPercent, cfg.APY)))
	}
	return table.Render()
}

func runCurve(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadCurve(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	seq, err := ilmath.GenerateCurve(cfg.Min, cfg.Max, cfg.Points)
	if err != nil {
		return err
	}

	if pngPath := cfg.PNG; pngPath != "" {
		img, err := chart.RenderCurve(slices.Collect(seq), chart.Options{})
		if err != nil {
			return err
		}
		if err := os.WriteFile(pngPath, img, 0o644); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", pngPath, len(img))
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Price change %", "Impermanent loss %")
	for p := range seq {
		table.Append(formatFloat(p.PriceChangePercent, 2), formatFloat(p.ImpermanentLossPercent, 4))
	}
	return table.Render()
}

func runBreakeven(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBreakeven(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Metric", "Value")
	table.Append("Days to breakeven", formatDays(ilmath.DaysToBreakeven(cfg.IL, cfg.APY)))
	if cfg.HasDays {
		table.Append(fmt.Sprintf("APY needed in %s days %%", formatFloat(cfg.Days, 0)), formatFloat(ilmath.BreakevenAPY(cfg.IL, cfg.Days), 4))
	}
	return table.Render()
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func formatDays(d ilmath.Days) string {
	if d.IsNever() {
		return "never"
	}
	return formatFloat(float64(d), 1)
}
