package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/shortcuts"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List filters, effects and shortcuts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), renderFilters())
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), renderEffects())
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), renderShortcuts())
		return nil
	},
}

func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := make([]string, len(rows[0]))
	for c := range cols {
		cells := make([]string, len(rows))
		for r, row := range rows {
			style := cellStyle.Foreground(colorInk)
			if r == 0 {
				style = cellStyle.Foreground(colorDim)
			}
			cells[r] = style.Render(row[c])
		}
		cols[c] = lipgloss.JoinVertical(lipgloss.Left, cells...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func renderFilters() string {
	rows := [][]string{{"FLAG", "LABEL", "RANGE", "DEFAULT", "NOTE"}}
	for _, def := range filters.Defs() {
		note := ""
		if def.ExportOnly {
			note = "export only"
		}
		rows = append(rows, []string{
			"--" + string(def.Name),
			def.Label,
			filters.FmtNum(def.Min) + ".." + filters.FmtNum(def.Max) + def.Unit,
			filters.FmtNum(def.DefaultVal) + def.Unit,
			note,
		})
	}
	return titleStyle.Render("Filters") + "\n" + table(rows)
}

func renderEffects() string {
	rows := [][]string{{"NAME", "LABEL", "RUNS"}}
	for _, s := range effects.Specs() {
		where := "effect server"
		if s.Local {
			where = "local"
		}
		rows = append(rows, []string{string(s.Name), s.Label, where})
	}
	for _, v := range effects.SketchVariations {
		rows = append(rows, []string{
			"--variation " + v.ID,
			v.Label + " sketch",
			fmt.Sprintf("blur %s, sharpen %s", filters.FmtNum(v.BlurSigma), filters.FmtNum(v.Sharpen)),
		})
	}
	return titleStyle.Render("Effects") + "\n" + table(rows)
}

func renderShortcuts() string {
	rows := [][]string{{"KEYS", "ACTION"}}
	for _, b := range shortcuts.Bindings {
		rows = append(rows, []string{b.Chord(), b.Label})
	}
	return titleStyle.Render("Shortcuts (web editor)") + "\n" + table(rows)
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}
