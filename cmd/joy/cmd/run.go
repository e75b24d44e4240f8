package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psil-lang/joy/pkg/session"
)

var runCmd = &cobra.Command{
	Use:   "run <file>...",
	Short: "Evaluate one or more files in order, against one session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	s := newSession()
	for _, filename := range args {
		if err := runFile(s, filename); err != nil {
			return err
		}
	}
	return nil
}

// runFile evaluates filename's lines in order against s. Lines are
// accumulated across a bracket-depth buffer the same way the REPL
// does, so a quotation or definition body spanning several source
// lines is parsed as one unit; the first line of each such unit that
// produces a runtime error or a failed parse stops the run.
func runFile(s *session.Session, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var buf strings.Builder
	bracketDepth := 0
	lineNo, unitStart := 0, 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if buf.Len() == 0 {
			unitStart = lineNo
		}
		for _, ch := range line {
			if ch == '[' {
				bracketDepth++
			} else if ch == ']' {
				bracketDepth--
			}
		}
		buf.WriteString(line)
		buf.WriteByte(' ')

		if bracketDepth > 0 {
			continue
		}
		unit := buf.String()
		buf.Reset()
		bracketDepth = 0
		if strings.TrimSpace(unit) == "" {
			continue
		}
		res := s.Eval(unit)
		if res.Quit {
			return nil
		}
		if res.Err != nil {
			return fmt.Errorf("%s:%d: %w", filename, unitStart, res.Err)
		}
	}
	return scanner.Err()
}
