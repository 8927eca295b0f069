package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nstehr/soy/journal"
)

var replayAll bool

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <journal>",
		Short: "Print a recorded session as a table",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	cmd.Flags().BoolVarP(&replayAll, "all", "a", false, "Include ticks where nothing was decided")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	entries, err := journal.ReadAll(args[0])
	if err != nil {
		return err
	}

	titleColor := color.New(color.FgCyan, color.Bold)
	infoColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed)

	if len(entries) == 0 {
		infoColor.Println("Journal is empty.")
		return nil
	}
	titleColor.Printf("Session %s: ticks %d to %d\n\n", entries[0].Session, entries[0].Tick, entries[len(entries)-1].Tick)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Tick", "Minerals", "Supply", "Free", "Bound", "Builders", "Bases", "Open", "Commands", "Fired", "Alerts"}),
	)

	violations := 0
	for _, e := range entries {
		if e.Invalid != "" {
			violations++
		}
		if !replayAll && len(e.Commands) == 0 && len(e.Fired) == 0 && len(e.Alerts) == 0 && e.Invalid == "" {
			continue
		}
		row := []string{
			fmt.Sprintf("%d", e.Tick),
			fmt.Sprintf("%d", e.Minerals),
			fmt.Sprintf("%d/%d", e.FoodUsed, e.FoodCap),
			fmt.Sprintf("%d", e.Ledger.Free),
			fmt.Sprintf("%d", e.Ledger.Bound),
			fmt.Sprintf("%d", e.Ledger.Builders),
			fmt.Sprintf("%d", e.Ledger.Bases),
			fmt.Sprintf("%d", e.OpenSlots),
			fmt.Sprintf("%d", len(e.Commands)),
			strings.Join(e.Fired, ", "),
			strings.Join(e.Alerts, "; "),
		}
		_ = table.Append(row)
	}
	_ = table.Render()

	if violations > 0 {
		errorColor.Printf("\n%d ticks recorded ledger violations\n", violations)
	}
	return nil
}
