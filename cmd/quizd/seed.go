package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	"github.com/mind-engage/mindengage-quiz/internal/assessment"
	"github.com/mind-engage/mindengage-quiz/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo accounts and the diagnostic question set",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		eng := assessment.NewEngine(assessment.NewSQLStore(rt.db, nil), assessment.WithLogger(rt.log))
		res, err := seed.Run(cmd.Context(), accounts.NewStore(rt.db), eng.Bank, rt.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "teacher created: %t, student created: %t, diagnostic questions created: %d\n",
			res.TeacherCreated, res.StudentCreated, res.DiagnosticCreated)
		return nil
	},
}
