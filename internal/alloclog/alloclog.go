// Package alloclog centralizes the allocator's logging setup. It follows
// the logrus field-logger idiom used by cmd/opm's registry-serve command:
// a package-level logger configured once, with call sites attaching
// structured fields rather than formatting strings themselves.
package alloclog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
}

// SetDebug toggles debug-level logging, mirroring the --debug flag wiring
// of cmd/opm subcommands.
func SetDebug(debug bool) {
	if debug {
		base.SetLevel(logrus.DebugLevel)
		return
	}
	base.SetLevel(logrus.InfoLevel)
}

// ForDomain returns a field logger scoped to one allocation domain.
func ForDomain(name, path string, rank int) logrus.FieldLogger {
	fields := logrus.Fields{"domain": name, "rank": rank}
	if path != "" {
		fields["path"] = path
	} else {
		fields["backing"] = "heap"
	}
	return base.WithFields(fields)
}

// Fatal logs at fatal level and terminates the process, the designated
// response to an IOFailure: partial I/O would silently corrupt tensor
// data and no recovery is defined.
func Fatal(log logrus.FieldLogger, err error, msg string) {
	log.WithError(err).Fatal(msg)
}
