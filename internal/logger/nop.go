package logger

// nopLogger discards everything. Useful in tests and as a safe default.
type nopLogger struct{}

// Nop returns a Logger that discards all log entries.
func Nop() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Debug(_ string, _ ...Field) {}
func (n *nopLogger) Info(_ string, _ ...Field)  {}
func (n *nopLogger) Warn(_ string, _ ...Field)  {}
func (n *nopLogger) Error(_ string, _ ...Field) {}
func (n *nopLogger) Fatal(_ string, _ ...Field) {}

func (n *nopLogger) With(_ ...Field) Logger { return n }
func (n *nopLogger) Sync() error            { return nil }
