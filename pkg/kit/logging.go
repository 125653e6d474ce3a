package kit

import "go.uber.org/zap"

// NewLogger builds the service logger. Unknown levels fall back to info so a
// typo in LOG_LEVEL never silences a service.
func NewLogger(service, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	l, _ := cfg.Build()
	return l
}
