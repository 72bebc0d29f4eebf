package misc

import (
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

// Severity picks the logger level CheckError reports at
type Severity int

func (s Severity) String() string {
	if s < Fatal || s > Debug {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return [...]string{"Fatal", "Error", "Warning", "Info", "Debug"}[s]
}

// CheckError logs a non-nil err at the given severity and reports whether
// it did. Fatal, and any unknown severity, exits the process.
func CheckError(err error, logger bslogger.Logger, severity Severity) bool {
	if err == nil {
		return false
	}

	switch severity {
	case Error:
		logger.Error(err.Error())
	case Warning:
		logger.Warning(err.Error())
	case Info:
		logger.Info(err.Error())
	case Debug:
		logger.Debug(err.Error())
	default:
		logger.Fatalf("%s (%s)", err, severity)
	}
	return true
}
