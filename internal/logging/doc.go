// Package logging constructs the process logger.
//
// Output goes to stdout and, when a log directory is configured, to
// snakewatch.log inside it. Console format is for interactive runs, JSON for
// collection by other tooling. Every logger carries a run id so interleaved
// log files stay attributable.
package logging
