package main

import (
	"context"
	"os"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/spf13/cobra"

	"mandelbrot/misc"
)

var verbosity string

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mandelbrot",
		Short: "Render the Mandelbrot set locally or across a pool of workers",
		Args:  cobra.ExactArgs(0),
	}
	cmd.PersistentFlags().StringVar(&verbosity, "verbosity", misc.DefaultVerbosity, "log verbosity: minimal, normal or all, overrides the settings file")

	cmd.AddCommand(renderCmd(), coordinatorCmd(), workerCmd())

	return cmd
}

func coordinatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coordinator",
		Short: "Split an image into tasks and assemble the results returned by workers",
		Args:  cobra.ExactArgs(0),
		RunE:  runCoordinator,
	}
	cmd.Flags().String("settings", "coordinator.json", "path to the coordinator settings file")

	return cmd
}

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Compute escape times for tasks handed out by a coordinator",
		Args:  cobra.ExactArgs(0),
		RunE:  runWorker,
	}
	cmd.Flags().String("settings", "worker.json", "path to the worker settings file")

	return cmd
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

// newLogger applies the --verbosity flag to a named logger
func newLogger(name string) (bslogger.Logger, error) {
	return misc.NewLogger(name, verbosity, nil)
}
