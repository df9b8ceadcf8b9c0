// Package logging provides a process-wide structured logger for the OIFITS tools.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. The reader,
// merge and filter engines report recoverable conditions (skipped tables,
// dropped channels, pruned auxiliary tables) through this logger instead of
// returning errors.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes WARN-level logs to stderr without a log file, so that
// diagnostics never mix with command output written to stdout.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info("dataset loaded", "file", path)
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily (via sync.Once).
//
// # Context helpers
//
//	log := logging.WithTable("OI_WAVELENGTH", insname) // adds table and name fields
//	log := logging.WithComponent("filter")             // adds component field
package logging
