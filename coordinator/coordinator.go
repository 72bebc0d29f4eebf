package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/BrugadaSyndrome/multirpc"

	"mandelbrot/mandelbrot"
	"mandelbrot/misc"
	"mandelbrot/palette"
	"mandelbrot/render"
	"mandelbrot/task"
)

type Coordinator struct {
	clients           map[string]*multirpc.TcpClient
	done              chan struct{}
	err               error
	imagePath         string
	ingested          map[int]bool
	logFile           *os.File
	logger            bslogger.Logger
	mutex             sync.Mutex
	pixelsLeft        int
	raster            []int
	settings          Settings
	stopOnce          sync.Once
	stopTickers       chan struct{}
	taskCount         int
	taskIngestedCount int
	tasksHandedOut    map[string]map[int]task.Task // keep track of all tasks workers have
	tasksDone         chan task.Task
	tasksTodo         chan task.Task
	workerWait        *sync.WaitGroup

	Server multirpc.TcpServer
}

func NewCoordinator(settings Settings) (*Coordinator, error) {
	if err := settings.Verify(); err != nil {
		return nil, err
	}

	width := settings.MandelbrotSettings.Width
	height := settings.MandelbrotSettings.Height

	tasks, err := task.GenerateTasks(settings.TaskGeneration, 0, 1, width, height)
	if err != nil {
		return nil, err
	}

	// Create directory to store files for this run
	runPath := filepath.Join(settings.SavePath, settings.RunName)
	if err := os.MkdirAll(runPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("unable to create folder %s - %w", runPath, err)
	}

	// Copy the settings to the directory so the run can be duplicated in the future
	settingsBytes, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, err
	}
	if _, err := misc.WriteFile(filepath.Join(runPath, "coordinator.json"), settingsBytes); err != nil {
		return nil, err
	}

	// Create a log file to record the run
	logFile, err := os.Create(filepath.Join(runPath, "coordinator.log"))
	if err != nil {
		return nil, err
	}

	logger, err := misc.NewLogger("Coordinator", settings.Verbosity, logFile)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	coordinator := &Coordinator{
		clients:        make(map[string]*multirpc.TcpClient),
		done:           make(chan struct{}),
		imagePath:      filepath.Join(runPath, "mandelbrot."+settings.Format),
		ingested:       make(map[int]bool),
		logFile:        logFile,
		logger:         logger,
		pixelsLeft:     width * height,
		raster:         make([]int, width*height),
		settings:       settings,
		stopTickers:    make(chan struct{}),
		taskCount:      len(tasks),
		tasksHandedOut: make(map[string]map[int]task.Task),
		tasksDone:      make(chan task.Task, len(tasks)),
		tasksTodo:      make(chan task.Task, len(tasks)),
		workerWait:     &sync.WaitGroup{},
	}

	// The queue holds every task so requeued ones never block
	for _, todo := range tasks {
		coordinator.tasksTodo <- todo
	}
	coordinator.logger.Infof("Generated %d tasks by %s for a %dx%d image", len(tasks), settings.TaskGeneration, width, height)

	// Start up the rpc tcp server to allow workers to communicate with the coordinator
	coordinator.Server = multirpc.NewTcpServer(coordinator, settings.ServerAddress, "CoordinatorServer")
	if err := coordinator.Server.Run(); err != nil {
		logFile.Close()
		return nil, err
	}

	go coordinator.tickers()
	go coordinator.ingestTasks()

	return coordinator, nil
}

func (c *Coordinator) tickers() {
	rollCall := time.NewTicker(time.Minute)
	heartBeat := time.NewTicker(30 * time.Second)
	defer rollCall.Stop()
	defer heartBeat.Stop()

	for {
		select {
		case <-c.stopTickers:
			return

		case <-rollCall.C:
			c.logger.Debug("Roll call ticker")
			for _, v := range c.workerClients() {
				var junk misc.Nothing
				var reply bool
				if misc.CheckError(v.Call("Worker.RollCall", junk, &reply), c.logger, misc.Warning) {
					// Cannot communicate with the worker so remove it from the pool
					c.logger.Warningf("Worker %s missed roll call", v.Name())
					var nothing misc.Nothing
					misc.CheckError(c.DeRegisterWorker(v.Name(), &nothing), c.logger, misc.Warning)
				}
			}

		case <-heartBeat.C:
			c.logger.Debug("Heart beat ticker")
			c.mutex.Lock()
			c.logger.Infof("Tasks [Total: %d] [Ingested: %d] [Todo: %d] | Workers [%d]", c.taskCount, c.taskIngestedCount, len(c.tasksTodo), len(c.clients))
			c.mutex.Unlock()
		}
	}
}

func (c *Coordinator) workerClients() []*multirpc.TcpClient {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	clients := make([]*multirpc.TcpClient, 0, len(c.clients))
	for _, v := range c.clients {
		clients = append(clients, v)
	}
	return clients
}

func (c *Coordinator) ingestTasks() {
	c.logger.Info("Ingesting tasks")

	var startTime = time.Now()
	width := c.settings.MandelbrotSettings.Width
	height := c.settings.MandelbrotSettings.Height

	for c.pixelsLeft > 0 {
		taskReceived := <-c.tasksDone

		c.mutex.Lock()
		delete(c.tasksHandedOut[taskReceived.WorkerAddress], taskReceived.ID)
		duplicate := c.ingested[taskReceived.ID]
		c.mutex.Unlock()

		if duplicate {
			c.logger.Debugf("Ignoring duplicate result for task %d", taskReceived.ID)
			continue
		}
		if !taskReceived.Done() {
			c.logger.Warningf("Task %d came back with %d of %d results, requeueing", taskReceived.ID, len(taskReceived.Results), len(taskReceived.Tasks))
			c.tasksTodo <- resetTask(taskReceived)
			continue
		}

		for _, result := range taskReceived.Results {
			if result.Column < 0 || result.Column >= width || result.Row < 0 || result.Row >= height {
				c.logger.Warningf("Dropping result outside the image: %s", result.String())
				continue
			}
			// Record the pixel and decrement the amount of pixels left to be recorded
			c.raster[result.Row*width+result.Column] = result.Iterations
			c.pixelsLeft--
		}

		c.mutex.Lock()
		c.ingested[taskReceived.ID] = true
		c.taskIngestedCount++
		c.mutex.Unlock()
	}

	c.logger.Debugf("Done ingesting %d tasks in %s", c.taskIngestedCount, time.Since(startTime))

	c.err = c.saveImage()
	if c.err != nil {
		c.logger.Errorf("Unable to save image: %s", c.err)
	} else {
		c.logger.Infof("Saved image to %s", c.imagePath)
	}
	c.mutex.Lock()
	close(c.done)
	c.mutex.Unlock()

	c.logger.Infof("Waiting for %d workers to disconnect", len(c.workerClients()))
	c.workerWait.Wait()
	c.stop()
}

func (c *Coordinator) saveImage() error {
	p, err := palette.New(c.raster, c.settings.PaletteSettings)
	if err != nil {
		return err
	}
	c.logger.Infof("Built palette with %d colors over %d thresholds", len(p.Colors), len(p.Thresholds))

	surface, err := render.NewImageSurface(c.settings.MandelbrotSettings.Width, c.settings.MandelbrotSettings.Height, c.imagePath, render.Format(c.settings.Format))
	if err != nil {
		return err
	}
	return render.Paint(c.raster, c.settings.MandelbrotSettings.Width, c.settings.MandelbrotSettings.Height, p, surface)
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() {
		close(c.stopTickers)
		misc.CheckError(c.Server.Stop(), c.logger, misc.Warning)
		misc.CheckError(c.logFile.Close(), c.logger, misc.Warning)
	})
}

// Done is closed once the raster is complete and the image has been saved
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until every worker has left and the server is stopped
func (c *Coordinator) Wait() {
	c.Server.Wait()
}

// Err reports why the image could not be saved. Only valid after Done.
func (c *Coordinator) Err() error {
	return c.err
}

func (c *Coordinator) ImagePath() string {
	return c.imagePath
}

// Raster returns a copy of the assembled iteration raster. Only valid after Done.
func (c *Coordinator) Raster() []int {
	raster := make([]int, len(c.raster))
	copy(raster, c.raster)
	return raster
}

func resetTask(t task.Task) task.Task {
	fresh := task.NewTask(t.ID, t.ImageNumber)
	fresh.Tasks = t.Tasks
	return fresh
}

func (c *Coordinator) RegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	// Create a client to communicate with this worker
	client := multirpc.NewTcpClient(workerServerAddress, workerServerAddress)
	if err := client.Connect(); err != nil {
		return err
	}

	c.mutex.Lock()
	select {
	case <-c.done:
		// Too late to join, the image is already finished
		c.mutex.Unlock()
		misc.CheckError(client.Disconnect(), c.logger, misc.Warning)
		return task.ErrAllTasksHandedOut
	default:
	}
	c.clients[workerServerAddress] = &client
	// Track all tasks this worker checks out
	c.tasksHandedOut[workerServerAddress] = make(map[int]task.Task)
	c.workerWait.Add(1)
	c.mutex.Unlock()

	c.logger.Infof("Worker joined: %s", workerServerAddress)

	return nil
}

func (c *Coordinator) DeRegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	c.mutex.Lock()
	client, ok := c.clients[workerServerAddress]
	if !ok {
		c.mutex.Unlock()
		return fmt.Errorf("unknown worker %s", workerServerAddress)
	}
	outstanding := c.tasksHandedOut[workerServerAddress]

	// Remove stored values associated with this worker
	delete(c.tasksHandedOut, workerServerAddress)
	delete(c.clients, workerServerAddress)
	c.mutex.Unlock()

	// Put tasks this worker has not returned yet back into the tasksTodo pool
	for _, v := range outstanding {
		c.logger.Infof("Requeueing task %d from %s", v.ID, workerServerAddress)
		c.tasksTodo <- resetTask(v)
	}

	misc.CheckError(client.Disconnect(), c.logger, misc.Warning)

	c.logger.Infof("Worker left: %s", workerServerAddress)
	c.workerWait.Done()

	return nil
}

func (c *Coordinator) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

// GetTask hands out the next task. It blocks while every remaining task is
// checked out by other workers and fails once the image is complete.
func (c *Coordinator) GetTask(workerAddress string, reply *task.Task) error {
	select {
	case todo := <-c.tasksTodo:
		c.mutex.Lock()
		todo.WorkerAddress = workerAddress
		if handedOut, ok := c.tasksHandedOut[workerAddress]; ok {
			handedOut[todo.ID] = todo
		}
		c.mutex.Unlock()
		*reply = todo
		return nil

	case <-c.done:
		c.logger.Info("Telling worker that all tasks are handed out")
		return task.ErrAllTasksHandedOut
	}
}

func (c *Coordinator) ReturnTask(done task.Task, nothing *misc.Nothing) error {
	select {
	case c.tasksDone <- done:
	case <-c.done:
	}
	return nil
}

func (c *Coordinator) GetMandelbrotSettings(nothing misc.Nothing, settings *mandelbrot.Settings) error {
	*settings = c.settings.MandelbrotSettings
	return nil
}
