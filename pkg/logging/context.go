package logging

import (
	"log/slog"
)

// WithTable creates a logger with OIFITS table context.
// kind is the extension name (OI_VIS2, OI_ARRAY, ...) and name the natural
// key of the table (ARRNAME, INSNAME or CORRNAME), which may be empty.
//
// Example:
//
//	log := logging.WithTable("OI_WAVELENGTH", "INS1")
//	log.Warn("no channels left, dropping table")
func WithTable(kind, name string) *slog.Logger {
	if name == "" {
		return GetLogger().With("table", kind)
	}
	return GetLogger().With("table", kind, "name", name)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("merge")
//	log.Debug("phase complete", "phase", "targets")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithFile creates a logger carrying the path of the file being read or written.
func WithFile(path string) *slog.Logger {
	return GetLogger().With("file", path)
}

// WithError creates a logger with error context.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
