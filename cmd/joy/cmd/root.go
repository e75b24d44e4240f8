package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psil-lang/joy/pkg/session"
)

var (
	flagGas   int
	flagQuiet bool
	flagDebug bool
)

// prelude seeds a handful of conventional Joy-family words before the
// first user line, matching aszkid/joy-rs's own built-in `square`.
var prelude = []string{
	"square == dup *",
	"succ == 1 +",
	"pred == 1 -",
}

var rootCmd = &cobra.Command{
	Use:   "joy",
	Short: "A Joy-family concatenative language interpreter",
	Long: `joy is a stack-based, concatenative language in the Joy family:
programs are sequences of words that consume and produce values on a
single shared stack, and quotations make code a first-class value that
combinators like ifte, linrec, and map can run.

Run with no arguments for an interactive REPL.`,
	RunE: runREPL,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagGas, "gas", 0, "evaluation step budget (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress the startup banner")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "print stack and error state after every line")
}

func newSession() *session.Session {
	s := session.New(prelude...)
	s.SetGas(flagGas)
	s.SetDebug(flagDebug)
	return s
}

func runREPL(_ *cobra.Command, _ []string) error {
	s := newSession()

	if !flagQuiet {
		printBanner()
	}

	reader := bufio.NewReader(os.Stdin)
	var multiLine strings.Builder
	bracketDepth := 0

	for {
		if multiLine.Len() == 0 {
			fmt.Print("joy> ")
		} else {
			fmt.Print("...> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimRight(line, "\r\n")

		if multiLine.Len() == 0 {
			if handled := handleCommand(s, line); handled {
				continue
			}
		}

		for _, ch := range line {
			if ch == '[' {
				bracketDepth++
			} else if ch == ']' {
				bracketDepth--
			}
		}
		multiLine.WriteString(line)
		multiLine.WriteByte(' ')

		if bracketDepth <= 0 {
			full := multiLine.String()
			multiLine.Reset()
			bracketDepth = 0
			if strings.TrimSpace(full) != "" {
				evalREPLLine(s, full)
			}
		}
	}
}

// handleCommand recognises a colon-command and runs it; it reports
// whether line was a command at all (so plain input falls through to
// the evaluator).
func handleCommand(s *session.Session, line string) bool {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return true

	case trimmed == ":help" || trimmed == ":h":
		printHelp()
		return true

	case trimmed == ":quit" || trimmed == ":q":
		os.Exit(0)

	case trimmed == ":stack" || trimmed == ":s":
		fmt.Println(s.StackString())
		return true

	case trimmed == ":clear" || trimmed == ":c":
		s.Reset()
		fmt.Println("stack cleared")
		return true

	case trimmed == ":debug" || trimmed == ":d":
		s.SetDebug(!s.Debug())
		fmt.Printf("debug mode: %v\n", s.Debug())
		return true

	case trimmed == ":words" || trimmed == ":w":
		printWords(s)
		return true

	case strings.HasPrefix(trimmed, ":load "):
		filename := strings.TrimSpace(strings.TrimPrefix(trimmed, ":load "))
		if err := runFile(s, filename); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return true

	case strings.HasPrefix(trimmed, ":gas "):
		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, ":gas "))
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println("usage: :gas <n>")
			return true
		}
		s.SetGas(n)
		fmt.Printf("gas limit set to %d\n", n)
		return true
	}

	return false
}

func evalREPLLine(s *session.Session, source string) {
	res := s.Eval(source)
	if res.Quit {
		os.Exit(0)
	}
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
	}
	if s.Debug() {
		fmt.Printf("  stack: %s\n", res.StackString())
		if s.HasError() {
			fmt.Printf("  error register: %v\n", s.ErrorRegister())
		}
	} else if res.Definition {
		fmt.Printf("defined: %s\n", res.DefName)
	} else if res.Err == nil {
		fmt.Println(res.StackString())
	}
}

func printBanner() {
	fmt.Println(`joy - a Joy-family concatenative language interpreter
Type :help for commands, :quit to exit.`)
}

func printHelp() {
	fmt.Print(`Commands:
  :help, :h        show this help
  :quit, :q        exit
  :stack, :s       show the current stack
  :clear, :c       clear the stack and error register
  :debug, :d       toggle debug mode
  :words, :w       list builtins and defined words
  :load <file>     load and evaluate a file
  :gas <n>         set the step budget (0 = unlimited)

Basics:
  1 2 +            numbers and arithmetic
  "hi" .           strings and printing
  [ dup * ]        quotations
  name == body     definitions

Example:
  fact == [0 =] [pop 1] [dup 1 -] [*] linrec
  5 fact .
`)
}

func printWords(s *session.Session) {
	builtins, defined := s.Words()

	if len(defined) > 0 {
		fmt.Println("defined words:")
		for _, name := range defined {
			if src, ok := s.DefinitionSource(name); ok {
				fmt.Printf("  %s == %s\n", name, src)
			}
		}
	}

	fmt.Printf("builtins: %d words\n", len(builtins))
	const cols = 6
	for i, name := range builtins {
		fmt.Printf("%-12s", name)
		if (i+1)%cols == 0 {
			fmt.Println()
		}
	}
	if len(builtins)%cols != 0 {
		fmt.Println()
	}
}
