// Package status renders forecast progress to the terminal.
package status

import "github.com/pterm/pterm"

// Reporter prints pipeline progress with pterm. Calls are best-effort; the
// pipeline never depends on their outcome.
type Reporter struct{}

// New creates a terminal progress reporter.
func New() *Reporter {
	return &Reporter{}
}

// Stage prints a section header for a pipeline stage.
func (*Reporter) Stage(name string) {
	pterm.DefaultSection.Println(name)
}

// Target prints the ensemble progress line.
func (*Reporter) Target(k, n int) {
	pterm.Info.Printfln("refining series %d of %d", k, n)
}
