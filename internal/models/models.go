// Package models defines the wire types exchanged with the Dayplan API.
package models

// Task statuses.
const (
	StatusTodo = "todo"
	StatusDone = "done"
)

// Task is a dated task. Description is required and non-empty; Comment is
// optional. Date is a zero-padded ISO-8601 calendar date (YYYY-MM-DD).
type Task struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Comment     string `json:"comment,omitempty"`
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Project bundles tasks around an anchor date. TemplateID references the
// template the project was seeded from; zero means none.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AnchorDate  string `json:"anchorDate"`
	Description string `json:"description,omitempty"`
	TemplateID  int64  `json:"templateId,omitempty"`
}

// TaskDef is a task blueprint inside a template. The engine only consumes
// the count of definitions, but the wire shape is kept for completeness.
type TaskDef struct {
	Description string `json:"description"`
	Offset      int    `json:"offset"` // days relative to the project anchor date
}

// Template is a read-only blueprint for seeding a project's tasks.
type Template struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	TaskDefinitions []TaskDef `json:"taskDefinitions"`
}

// Progress is a project's derived completion ratio. It is computed from the
// project's tasks and never stored.
type Progress struct {
	Done  int
	Total int
}

// AllDone reports whether every task is completed. Empty projects are
// never "all done".
func (p Progress) AllDone() bool {
	return p.Total > 0 && p.Done == p.Total
}
