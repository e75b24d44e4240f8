package cmd

import (
	"github.com/spf13/cobra"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List builtins and any words defined by the prelude",
	RunE:  runWords,
}

func init() {
	rootCmd.AddCommand(wordsCmd)
}

func runWords(_ *cobra.Command, _ []string) error {
	printWords(newSession())
	return nil
}
