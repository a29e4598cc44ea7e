package model

// Task statuses used by the task-listing endpoint. Only the completed
// status participates in the plan-vs-fact report by default; the
// hierarchy report takes tasks of any status.
const (
	StatusPending    = 2
	StatusInProgress = 3
	StatusDeferred   = 4
	StatusCompleted  = 5
)

// Task is a work item fetched from the remote task-listing endpoint.
// The record is a read-only snapshot: nothing in the reporting pipeline
// mutates tasks or writes them back.
type Task struct {
	// ID is the task's identifier within the remote service.
	ID ID `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// GroupID is the project (workgroup) the task belongs to; zero
	// when the task is not filed under any project.
	GroupID ID `json:"groupId"`

	// ParentID links a subtask to its parent task. Zero means the task
	// is a root. A non-zero parent that is absent from the fetched set
	// is tolerated and treated as a root as well.
	ParentID ID `json:"parentId"`

	// ResponsibleID is the user assigned to the task; zero when
	// unassigned.
	ResponsibleID ID `json:"responsibleId"`

	// TimeEstimate is the planned effort in seconds.
	TimeEstimate Seconds `json:"timeEstimate"`

	// TimeSpentInLogs is the logged (actual) effort in seconds.
	TimeSpentInLogs Seconds `json:"timeSpentInLogs"`

	// Status is the task's status code (use Status* constants).
	Status ID `json:"status"`

	// CreatedDate and ClosedDate are the service's timestamp strings,
	// kept verbatim; the reports only filter on them server-side.
	CreatedDate string `json:"createdDate"`
	ClosedDate  string `json:"closedDate"`
}
