package store

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunFinished RunStatus = "finished"
)

// Run is one batch pass over a query log.
type Run struct {
	ID     string
	Seq    int64
	Source string
	Status RunStatus
	Total  int
	// Counts maps category name to number of items. Empty until FinishRun.
	Counts map[string]int
}

// Item is one translated query of a run. Seq is the query's position in the
// source log, starting at 1.
type Item struct {
	Seq      int64
	Input    string
	Output   string
	Category string
	Error    string
}
