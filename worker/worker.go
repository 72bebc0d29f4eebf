package worker

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/BrugadaSyndrome/multirpc"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/task"
)

type Worker struct {
	done           chan struct{}
	logger         bslogger.Logger
	mandelbrot     mandelbrot.Mandelbrot
	myAddress      string
	shutdownOnce   sync.Once
	stopTickers    chan struct{}
	tasksCompleted atomic.Int64

	ServerClient multirpc.TcpServerClient
}

func NewWorker(settings Settings) (*Worker, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	// Find a free port to use for this worker
	port, err := misc.GetFreePort()
	if err != nil {
		return nil, err
	}
	myAddress := net.JoinHostPort(settings.Address, strconv.Itoa(port))

	logger, err := misc.NewLogger(fmt.Sprintf("Worker %s", myAddress), settings.Verbosity, nil)
	if err != nil {
		return nil, err
	}

	worker := &Worker{
		done:        make(chan struct{}),
		logger:      logger,
		myAddress:   myAddress,
		stopTickers: make(chan struct{}),
	}
	worker.logger.Debugf("Found free port: %d", port)

	worker.ServerClient = multirpc.NewTcpServerClient(worker, myAddress, myAddress, settings.CoordinatorAddress, settings.CoordinatorAddress)
	if err := worker.ServerClient.Server.Run(); err != nil {
		return nil, err
	}

	// Register with the coordinator
	if err := worker.ServerClient.Client.Connect(); err != nil {
		misc.CheckError(worker.ServerClient.Server.Stop(), worker.logger, misc.Warning)
		return nil, err
	}
	var nothing misc.Nothing
	if err := worker.ServerClient.Client.Call("Coordinator.RegisterWorker", myAddress, &nothing); err != nil {
		misc.CheckError(worker.ServerClient.Client.Disconnect(), worker.logger, misc.Warning)
		misc.CheckError(worker.ServerClient.Server.Stop(), worker.logger, misc.Warning)
		return nil, err
	}

	// Get Mandelbrot settings from the coordinator
	var mandelbrotSettings mandelbrot.Settings
	if err := worker.ServerClient.Client.Call("Coordinator.GetMandelbrotSettings", nothing, &mandelbrotSettings); err != nil {
		worker.shutdown()
		return nil, err
	}
	worker.mandelbrot = mandelbrot.NewMandelbrot(mandelbrotSettings)
	worker.logger.Debugf("Received settings %s", mandelbrotSettings)

	go worker.tickers()
	go worker.processTasks()

	return worker, nil
}

func (w *Worker) tickers() {
	rollCall := time.NewTicker(time.Minute)
	heartBeat := time.NewTicker(30 * time.Second)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-w.stopTickers:
			return

		case <-rollCall.C:
			w.logger.Debug("Roll call ticker")
			var junk misc.Nothing
			var reply bool
			err := w.ServerClient.Client.Call("Coordinator.RollCall", junk, &reply)
			if err != nil {
				// Cannot communicate with the coordinator so we should shut down
				w.logger.Warningf("Coordinator missed roll call: %s", err)
				go w.shutdown()
				return
			}

		case <-heartBeat.C:
			w.logger.Debug("Heart beat ticker")
			w.logger.Infof("Tasks [Completed: %d]", w.tasksCompleted.Load())
		}
	}
}

func (w *Worker) processTasks() {
	w.logger.Info("Processing tasks")

	var nothing misc.Nothing
	var startTime = time.Now()

	for {
		var taskTodo task.Task

		err := w.ServerClient.Client.Call("Coordinator.GetTask", w.myAddress, &taskTodo)
		if err != nil {
			// This is an expected error. No more work to do
			if err.Error() == task.ErrAllTasksHandedOut.Error() {
				break
			}
			w.logger.Errorf("Unable to get a task: %s", err)
			break
		}

		for {
			// Process each coordinate given
			coordinate, err := taskTodo.GetNextTask()
			if err != nil {
				break
			}

			point := w.mandelbrot.ConvertPixelCoordinateToComplexCoordinate(coordinate.Column, coordinate.Row)
			taskTodo.AddResult(task.Pixel{
				Column:     coordinate.Column,
				Iterations: w.mandelbrot.EscapeTime(point),
				Row:        coordinate.Row,
			})
		}

		err = w.ServerClient.Client.Call("Coordinator.ReturnTask", taskTodo, &nothing)
		if err != nil {
			w.logger.Errorf("Unable to return a task: %s", err)
			break
		}
		w.tasksCompleted.Add(1)
	}

	w.logger.Info("Done processing tasks")
	w.logger.Debugf("Processed %d tasks in %s", w.tasksCompleted.Load(), time.Since(startTime))

	w.shutdown()
}

func (w *Worker) shutdown() {
	w.shutdownOnce.Do(func() {
		w.logger.Info("Shutting down")
		close(w.stopTickers)

		var nothing misc.Nothing
		misc.CheckError(w.ServerClient.Client.Call("Coordinator.DeRegisterWorker", w.myAddress, &nothing), w.logger, misc.Warning)
		misc.CheckError(w.ServerClient.Client.Disconnect(), w.logger, misc.Warning)
		misc.CheckError(w.ServerClient.Server.Stop(), w.logger, misc.Warning)
		close(w.done)
	})
}

// Done is closed once the worker has left the coordinator
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the worker's rpc server is stopped
func (w *Worker) Wait() {
	w.ServerClient.Server.Wait()
}

func (w *Worker) Address() string {
	return w.myAddress
}

func (w *Worker) TasksCompleted() int {
	return int(w.tasksCompleted.Load())
}

func (w *Worker) RollCall(request misc.Nothing, reply *bool) error {
	*reply = true
	return nil
}
