package task

import (
	"errors"
	"fmt"
)

const (
	Row Generation = iota
	Column
	Image
)

var (
	ErrAllTasksHandedOut = errors.New("all tasks handed out")
	ErrNoMoreTasks       = errors.New("no more tasks")
)

// Generation decides how an image is split into tasks
type Generation int

func (g Generation) String() string {
	if g < Row || g > Image {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return []string{
		"Row", "Column", "Image",
	}[g]
}

// Count returns how many tasks one image of the given size is split into
func (g Generation) Count(width int, height int) int {
	switch g {
	case Row:
		return height
	case Column:
		return width
	default:
		return 1
	}
}

type Task struct {
	CurrentTask   int
	ID            int
	ImageNumber   int
	Results       []Pixel
	Tasks         []Coordinate
	WorkerAddress string
}

func NewTask(id int, imageNumber int) Task {
	return Task{
		ID:          id,
		ImageNumber: imageNumber,
	}
}

func (t *Task) String() string {
	output := "{Task "
	output += fmt.Sprintf("ID: %d ", t.ID)
	output += fmt.Sprintf("Image Number: %d ", t.ImageNumber)
	output += fmt.Sprintf("Result Count: %d ", len(t.Results))
	output += fmt.Sprintf("Task Count: %d}", len(t.Tasks))
	return output
}

func (t *Task) AddTaskForPixel(coordinate Coordinate) {
	t.Tasks = append(t.Tasks, coordinate)
}

func (t *Task) AddTasksForRow(imageRow int, imageWidth int) {
	for c := 0; c < imageWidth; c++ {
		t.AddTaskForPixel(Coordinate{Column: c, Row: imageRow})
	}
}

func (t *Task) AddTasksForColumn(imageHeight int, imageColumn int) {
	for r := 0; r < imageHeight; r++ {
		t.AddTaskForPixel(Coordinate{Column: imageColumn, Row: r})
	}
}

func (t *Task) AddTasksForImage(imageHeight int, imageWidth int) {
	for r := 0; r < imageHeight; r++ {
		for c := 0; c < imageWidth; c++ {
			t.AddTaskForPixel(Coordinate{Column: c, Row: r})
		}
	}
}

// GenerateTasks splits an image into tasks numbered from firstID
func GenerateTasks(generation Generation, firstID int, imageNumber int, imageWidth int, imageHeight int) ([]Task, error) {
	tasks := make([]Task, 0, generation.Count(imageWidth, imageHeight))
	id := firstID

	switch generation {
	case Row:
		for row := 0; row < imageHeight; row++ {
			todo := NewTask(id, imageNumber)
			todo.AddTasksForRow(row, imageWidth)
			tasks = append(tasks, todo)
			id++
		}
	case Column:
		for column := 0; column < imageWidth; column++ {
			todo := NewTask(id, imageNumber)
			todo.AddTasksForColumn(imageHeight, column)
			tasks = append(tasks, todo)
			id++
		}
	case Image:
		todo := NewTask(id, imageNumber)
		todo.AddTasksForImage(imageHeight, imageWidth)
		tasks = append(tasks, todo)
	default:
		return nil, fmt.Errorf("unknown generation type: %d", generation)
	}

	return tasks, nil
}

// GetNextTask
// Returns the current coordinate to be processed. Make sure to return the result to the AddResult method before
// calling this method again
func (t *Task) GetNextTask() (Coordinate, error) {
	if len(t.Results) >= len(t.Tasks) {
		return Coordinate{}, ErrNoMoreTasks
	}
	return t.Tasks[t.CurrentTask], nil
}

// AddResult
// When returning a result the CurrentTask value is incremented so the next call to the GetNextTask method will return
// the correct coordinate
func (t *Task) AddResult(pixel Pixel) {
	t.Results = append(t.Results, pixel)
	t.CurrentTask++
}

// Done reports whether every coordinate has a result
func (t *Task) Done() bool {
	return len(t.Results) >= len(t.Tasks)
}
