package tokenizer

import (
	"time"

	"go.uber.org/zap"
)

// IterationSummary describes one accepted merge.
type IterationSummary struct {
	Step        int
	Total       int
	Tuple       Tuple
	ID          Symbol
	Expansion   []byte
	Count       int
	Score       float64
	Occurrences int
}

// Reporter receives progress events. The engine never looks at anything a
// reporter does, so reporters are free to drop events.
type Reporter interface {
	PhaseStarted(name string)
	PhaseFinished(name string, elapsed time.Duration)
	Iteration(s IterationSummary)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) PhaseStarted(string)                 {}
func (NopReporter) PhaseFinished(string, time.Duration) {}
func (NopReporter) Iteration(IterationSummary)          {}

// LogReporter writes events to a zap logger. Phases are logged at info level;
// iterations at info when Verbose is set and at debug otherwise.
type LogReporter struct {
	Log     *zap.SugaredLogger
	Verbose bool
}

// NewLogReporter returns a reporter logging to log.
func NewLogReporter(log *zap.SugaredLogger, verbose bool) *LogReporter {
	return &LogReporter{Log: log, Verbose: verbose}
}

func (r *LogReporter) PhaseStarted(name string) {
	r.Log.Debugw("phase started", "phase", name)
}

func (r *LogReporter) PhaseFinished(name string, elapsed time.Duration) {
	r.Log.Infof("%s took %.2f seconds", name, elapsed.Seconds())
}

func (r *LogReporter) Iteration(s IterationSummary) {
	logf := r.Log.Debugf
	if r.Verbose {
		logf = r.Log.Infof
	}
	logf("merge %d/%d: %v -> %d (%q) had %d occurrences, score %g, merged %d",
		s.Step, s.Total, s.Tuple, s.ID, s.Expansion, s.Count, s.Score, s.Occurrences)
}

// timePhase runs fn between PhaseStarted and PhaseFinished events.
func timePhase(r Reporter, name string, fn func()) {
	r.PhaseStarted(name)
	start := time.Now()
	fn()
	r.PhaseFinished(name, time.Since(start))
}
