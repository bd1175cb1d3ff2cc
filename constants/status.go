package constants

// JobStatus is the canonical status for extraction jobs in the registry.
type JobStatus string

// Stable values (serialized as these exact strings).
const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// InputType distinguishes how a job was submitted.
type InputType string

const (
	InputTypeFile InputType = "file"
	InputTypeText InputType = "text"
)
