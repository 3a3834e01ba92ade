package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
)

var (
	proposeSeed   int64
	proposeDryRun bool
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Generate work-shift proposals from the stored calendar",
}

var proposeWeekCmd = &cobra.Command{
	Use:   "week [YYYY-MM-DD]",
	Short: "Propose shifts for the week containing the date (today by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProposeWeek,
}

var proposeMonthCmd = &cobra.Command{
	Use:   "month <YYYY-MM>",
	Short: "Propose shifts for every week of a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runProposeMonth,
}

func init() {
	proposeCmd.PersistentFlags().Int64Var(&proposeSeed, "seed", 0, "Random seed for tie-breaking")
	proposeCmd.PersistentFlags().BoolVar(&proposeDryRun, "dry-run", false, "Print the proposals without storing them")
	proposeCmd.AddCommand(proposeWeekCmd, proposeMonthCmd)
	rootCmd.AddCommand(proposeCmd)
}

func runProposeWeek(cmd *cobra.Command, args []string) error {
	var weekOf calendar.Date
	if len(args) == 1 {
		d, err := calendar.ParseDate(args[0])
		if err != nil {
			return err
		}
		weekOf = d
	}

	p, db, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeDB(db)

	resp, err := p.ProposeWeek(cmd.Context(), planner.WeekRequest{WeekOf: weekOf, Seed: proposeSeed, DryRun: proposeDryRun})
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}

func runProposeMonth(cmd *cobra.Command, args []string) error {
	t, err := time.Parse("2006-01", args[0])
	if err != nil {
		return fmt.Errorf("month must be YYYY-MM: %w", err)
	}

	p, db, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeDB(db)

	resp, err := p.ProposeMonth(cmd.Context(), planner.MonthRequest{
		Year:   t.Year(),
		Month:  t.Month(),
		Seed:   proposeSeed,
		DryRun: proposeDryRun,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}
