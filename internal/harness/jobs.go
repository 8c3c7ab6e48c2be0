package harness

import (
	"sync"
	"time"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusPreflight JobStatus = "preflight"
	StatusUploading JobStatus = "uploading"
	StatusPolling   JobStatus = "polling"
	StatusDetecting JobStatus = "detecting"
	StatusSaving    JobStatus = "saving"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether a job is finished.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks a single document through the harness.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	// RequestedFormat is the outputContentFormat to ask for
	// ("default", "text", "markdown", "html").
	RequestedFormat string `json:"requested_format"`

	DetectedFormat string `json:"detected_format,omitempty"`
	ContentChars   int    `json:"content_chars,omitempty"`
	ContentPath    string `json:"content_path,omitempty"`
	ReportPath     string `json:"report_path,omitempty"`
	FellBack       bool   `json:"fell_back,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetResult records the completed analysis outcome.
func (j *Job) SetResult(detected string, chars int, contentPath, reportPath string, fellBack bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DetectedFormat = detected
	j.ContentChars = chars
	j.ContentPath = contentPath
	j.ReportPath = reportPath
	j.FellBack = fellBack
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID              string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	Phase           string    `json:"phase"`
	Filename        string    `json:"filename"`
	RequestedFormat string    `json:"requested_format"`
	DetectedFormat  string    `json:"detected_format,omitempty"`
	ContentChars    int       `json:"content_chars,omitempty"`
	ContentPath     string    `json:"content_path,omitempty"`
	ReportPath      string    `json:"report_path,omitempty"`
	FellBack        bool      `json:"fell_back,omitempty"`
	Errors          []string  `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:              j.ID,
		Status:          j.Status,
		Phase:           j.Phase,
		Filename:        j.Filename,
		RequestedFormat: j.RequestedFormat,
		DetectedFormat:  j.DetectedFormat,
		ContentChars:    j.ContentChars,
		ContentPath:     j.ContentPath,
		ReportPath:      j.ReportPath,
		FellBack:        j.FellBack,
		Errors:          append([]string(nil), errs...),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
