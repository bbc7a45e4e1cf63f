package model

// ReindexTask is the queue payload asking the worker to rebuild a
// document's chunk set from its stored (or re-fetched) source.
type ReindexTask struct {
	TaskID     string `json:"task_id"`
	DocumentID uint   `json:"document_id"`
}
