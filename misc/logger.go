package misc

import (
	"fmt"
	"os"
	"strings"

	"github.com/BrugadaSyndrome/bslogger"
)

// DefaultVerbosity is used when no verbosity is given
const DefaultVerbosity = "normal"

// NewLogger builds a named logger from a verbosity given as text
// ("minimal", "normal" or "all").
func NewLogger(name string, verbosity string, logFile *os.File) (bslogger.Logger, error) {
	switch strings.ToLower(verbosity) {
	case "minimal":
		return bslogger.NewLogger(name, bslogger.Minimal, logFile), nil
	case "", DefaultVerbosity:
		return bslogger.NewLogger(name, bslogger.Normal, logFile), nil
	case "all":
		return bslogger.NewLogger(name, bslogger.All, logFile), nil
	}
	return bslogger.NewLogger(name, bslogger.Normal, logFile), fmt.Errorf("unknown verbosity %q", verbosity)
}
