// Package types contains common types used across the application
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTask is returned when a task name is neither satisfaction nor price.
var ErrUnknownTask = errors.New("unknown task")

// Task names one of the two prediction forms.
type Task string

const (
	TaskSatisfaction Task = "satisfaction"
	TaskPrice        Task = "price"
)

// Tasks lists every task in display order.
func Tasks() []Task { return []Task{TaskSatisfaction, TaskPrice} }

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	return t == TaskSatisfaction || t == TaskPrice
}

func (t Task) String() string { return string(t) }

// ParseTask converts a query or path value to a Task. Matching ignores case
// and surrounding whitespace.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
	return t, nil
}

// Satisfaction classifier output labels.
const (
	LabelSatisfied    = "Satisfied"
	LabelDissatisfied = "Dissatisfied"
)

// SatisfactionLabel maps the classifier's class index to its display label.
// Class 1 is satisfied; anything else is dissatisfied.
func SatisfactionLabel(class int) string {
	if class == 1 {
		return LabelSatisfied
	}
	return LabelDissatisfied
}
