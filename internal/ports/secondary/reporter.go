package secondary

// Reporter defines the secondary port for progress diagnostics.
// Implementations write human-readable lines; they never fail the run.
type Reporter interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}
