package worker

import (
	"encoding/json"
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"

	"mandelbrot/misc"
)

const defaultCoordinatorPort = "51000"

type Settings struct {
	logger bslogger.Logger

	Address            string
	CoordinatorAddress string
	Verbosity          string
}

// NewSettings reads and verifies a JSON settings file
func NewSettings(settingsFile string) (Settings, error) {
	var s Settings
	fileBytes, err := misc.ReadFile(settingsFile)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(fileBytes, &s); err != nil {
		return s, fmt.Errorf("unable to parse %s - %w", settingsFile, err)
	}
	if err := s.Verify(); err != nil {
		return s, err
	}
	s.logger.Debug(s.String())
	return s, nil
}

func (s *Settings) String() string {
	output := "\nWorker settings\n"
	output += fmt.Sprintf("Address: %s\n", s.Address)
	output += fmt.Sprintf("Coordinator Address: %s\n", s.CoordinatorAddress)
	output += fmt.Sprintf("Verbosity: %s\n", s.Verbosity)
	return output
}

// Verify checks the verbosity and fills in the local address for anything left blank
func (s *Settings) Verify() error {
	logger, err := misc.NewLogger("WorkerSettings", s.Verbosity, nil)
	s.logger = logger
	if err != nil {
		return err
	}
	if s.Verbosity == "" {
		s.Verbosity = misc.DefaultVerbosity
	}

	if s.Address != "" && s.CoordinatorAddress != "" {
		return nil
	}

	localAddress, err := misc.GetLocalAddress()
	if err != nil {
		return err
	}
	if s.Address == "" {
		s.Address = localAddress
	}
	if s.CoordinatorAddress == "" {
		s.CoordinatorAddress = fmt.Sprintf("%s:%s", localAddress, defaultCoordinatorPort)
	}
	return nil
}
