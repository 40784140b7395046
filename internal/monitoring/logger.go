package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger to redirect or mute pipeline diagnostics.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Progress counts work items and logs through Logf every N of them.
// It is not safe for concurrent use.
type Progress struct {
	label string
	every int
	n     int
}

// NewProgress returns a counter that logs "<label>: <count>" every `every`
// ticks. every <= 0 disables the periodic lines.
func NewProgress(label string, every int) *Progress {
	return &Progress{label: label, every: every}
}

// Tick counts one item.
func (p *Progress) Tick() {
	p.n++
	if p.every > 0 && p.n%p.every == 0 {
		Logf("%s: %d", p.label, p.n)
	}
}

// Count returns the number of ticks so far.
func (p *Progress) Count() int { return p.n }

// Done logs the final count.
func (p *Progress) Done() {
	Logf("%s: %d total", p.label, p.n)
}
