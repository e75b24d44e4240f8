package session

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestProgramSnapshots runs a handful of small programs end to end and
// snapshots the resulting stack rendering, catching accidental changes
// to StackString's formatting or to a combinator's result shape.
func TestProgramSnapshots(t *testing.T) {
	programs := []struct {
		name  string
		lines []string
	}{
		{"factorial", []string{
			"fact == [0 =] [pop 1] [dup 1 -] [*] linrec",
			"6 fact",
		}},
		{"sum-of-squares", []string{
			"[1 2 3 4 5] [dup *] map 0 [+] fold",
		}},
		{"nested-quotation-size", []string{
			"[ [1 2] [3 4 5] ] size",
		}},
		{"onerr-recovers", []string{
			"[5 dup undefined-word] [pop \"recovered\"] onerr",
		}},
	}

	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			s := New()
			var last Result
			for _, line := range p.lines {
				last = s.Eval(line)
			}
			out := last.StackString()
			if last.Err != nil {
				out = fmt.Sprintf("error: %v", last.Err)
			}
			snaps.MatchSnapshot(t, out)
		})
	}
}
