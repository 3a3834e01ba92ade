package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/shiftplan-api/pkg/models"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <from> <to>",
	Short: "Turn the proposals in a date range into confirmed work",
	Args:  cobra.ExactArgs(2),
	RunE:  runPromote,
}

var clearCmd = &cobra.Command{
	Use:   "clear <from> <to>",
	Short: "Delete the proposals in a date range",
	Args:  cobra.ExactArgs(2),
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(promoteCmd, clearCmd)
}

func runPromote(cmd *cobra.Command, args []string) error {
	from, to, err := models.RangeRequest{From: args[0], To: args[1]}.Parse()
	if err != nil {
		return err
	}
	p, db, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeDB(db)

	n, err := p.Promote(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "promoted %d proposals\n", n)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	from, to, err := models.RangeRequest{From: args[0], To: args[1]}.Parse()
	if err != nil {
		return err
	}
	p, db, err := openPlanner()
	if err != nil {
		return err
	}
	defer closeDB(db)

	n, err := p.ClearProposals(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d proposals\n", n)
	return nil
}
