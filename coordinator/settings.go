package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/palette"
	"mandelbrot/render"
	"mandelbrot/task"
)

const defaultPort = "51000"

type Settings struct {
	logger bslogger.Logger

	Format             string
	MandelbrotSettings mandelbrot.Settings
	PaletteSettings    palette.Settings
	RunName            string
	SavePath           string
	ServerAddress      string
	TaskGeneration     task.Generation
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
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("Format: %s\n", s.Format)
	output += fmt.Sprintf("Mandelbrot: %s\n", s.MandelbrotSettings)
	output += fmt.Sprintf("Palette: %s\n", s.PaletteSettings)
	output += fmt.Sprintf("Run Name: %s\n", s.RunName)
	output += fmt.Sprintf("Save Path: %s\n", s.SavePath)
	output += fmt.Sprintf("Server Address: %s\n", s.ServerAddress)
	output += fmt.Sprintf("Task Generation: %s\n", s.TaskGeneration)
	output += fmt.Sprintf("Verbosity: %s\n", s.Verbosity)
	return output
}

func (s *Settings) Verify() error {
	logger, err := misc.NewLogger("CoordinatorSettings", s.Verbosity, nil)
	s.logger = logger
	if err != nil {
		return err
	}
	if s.Verbosity == "" {
		s.Verbosity = misc.DefaultVerbosity
	}

	if err := s.MandelbrotSettings.Verify(); err != nil {
		return err
	}
	if err := s.PaletteSettings.Verify(); err != nil {
		return err
	}

	format, err := render.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	s.Format = string(format)

	if s.RunName == "" {
		s.RunName = "run_" + time.Now().Format("2006_01_02-03_04_05")
	}
	if s.SavePath == "" {
		s.SavePath, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	if s.ServerAddress == "" {
		address, err := misc.GetLocalAddress()
		if err != nil {
			return err
		}
		s.ServerAddress = fmt.Sprintf("%s:%s", address, defaultPort)
	}
	if s.TaskGeneration < task.Row || s.TaskGeneration > task.Image {
		s.logger.Warningf("Unknown task generation %d, splitting by row", s.TaskGeneration)
		s.TaskGeneration = task.Row
	}

	return nil
}
