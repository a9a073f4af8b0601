package model

import "time"

// Recording is one uploaded class session. CombinedMarkdown stays empty
// until the job that owns JobID completes; job_id is unique, one job per
// recording.
type Recording struct {
	ID               string
	Date             string
	ClassName        string
	Section          string
	Subject          string
	AudioFilename    string
	JobID            string
	CombinedMarkdown string
	CreatedAt        time.Time
}
