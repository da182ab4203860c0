package models

// WorkStatus tracks the lifecycle of a project or task.
type WorkStatus string

const (
	StatusNotStarted       WorkStatus = "not_started"
	StatusInProgress       WorkStatus = "in_progress"
	StatusDone             WorkStatus = "done"
	StatusInQA             WorkStatus = "in_qa"
	StatusInUAT            WorkStatus = "in_uat"
	StatusMoreWorkIsNeeded WorkStatus = "more_work_is_needed"
	StatusAccepted         WorkStatus = "accepted"
)

func (s WorkStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone, StatusInQA,
		StatusInUAT, StatusMoreWorkIsNeeded, StatusAccepted:
		return true
	}
	return false
}
