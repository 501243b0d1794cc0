package domain

import dErrors "dvi/pkg/domain-errors"

// TaskStatus is the shared progress enum of recovery requests and checklist
// operations. The integer wire codes are stable.
type TaskStatus string

const (
	TaskNotStarted    TaskStatus = "not_started"
	TaskAssigned      TaskStatus = "assigned"
	TaskInProgress    TaskStatus = "in_progress"
	TaskCompleted     TaskStatus = "completed"
	TaskNotApplicable TaskStatus = "not_applicable"
	TaskNotPossible   TaskStatus = "not_possible"
)

var taskStatusCodes = map[TaskStatus]int{
	TaskNotStarted:    1,
	TaskAssigned:      2,
	TaskInProgress:    3,
	TaskCompleted:     4,
	TaskNotApplicable: 5,
	TaskNotPossible:   6,
}

// TaskStatuses lists every status in wire-code order.
var TaskStatuses = []TaskStatus{
	TaskNotStarted, TaskAssigned, TaskInProgress, TaskCompleted, TaskNotApplicable, TaskNotPossible,
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(s)
	if _, ok := taskStatusCodes[st]; !ok {
		return "", dErrors.NewField(dErrors.CodeInvalidInput, "status", "unknown status "+s)
	}
	return st, nil
}

func TaskStatusFromCode(code int) (TaskStatus, error) {
	for st, c := range taskStatusCodes {
		if c == code {
			return st, nil
		}
	}
	return "", dErrors.NewField(dErrors.CodeInvalidInput, "status", "unknown status code")
}

func (s TaskStatus) Code() int      { return taskStatusCodes[s] }
func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) IsValid() bool {
	_, ok := taskStatusCodes[s]
	return ok
}

// IsTerminal reports whether s ends a recovery request's lifecycle.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskNotApplicable || s == TaskNotPossible
}
