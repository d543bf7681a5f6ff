package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/vertex/internal/logging"
	"github.com/raysh454/vertex/internal/reportstore"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Stage     string `json:"stage,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`

	// For results
	ReportID string               `json:"report_id,omitempty"`
	Summary  *reportstore.Summary `json:"summary,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// ScanRequest names what a scan job works on: a URL or inline markup.
type ScanRequest struct {
	URL    string `json:"url,omitempty"`
	HTML   string `json:"html,omitempty"`
	Source string `json:"source,omitempty"`
	Mode   Mode   `json:"mode,omitempty"`
}

var ErrEmptyRequest = errors.New("scan request needs a url or html")

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Target    string        `json:"target"`
	Mode      Mode          `json:"mode"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	ReportID string               `json:"report_id,omitempty"`
	Summary  *reportstore.Summary `json:"summary,omitempty"`
}

const scanStages = 2

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) updateJob(jobID string, fn func(j *Job)) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		fn(j)
	}
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.updateJob(jobID, func(j *Job) {
		j.Status = status
		j.Error = errMsg
	})
	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: status,
		Error:  errMsg,
	})
}

// StartScanJob runs a scan in the background. Progress and the outcome are
// published on the job's Events channel, which is closed when the job ends.
func (o *Orchestrator) StartScanJob(ctx context.Context, req ScanRequest) (*Job, error) {
	if req.URL == "" && req.HTML == "" {
		return nil, ErrEmptyRequest
	}
	mode := req.Mode
	if req.HTML != "" {
		mode = ModeStatic
	} else if mode == "" {
		mode = o.cfg.DefaultMode
	}
	target := req.URL
	if req.HTML != "" {
		target = req.Source
	}

	o.closeMu.RLock()
	if o.closed {
		o.closeMu.RUnlock()
		return nil, ErrClosed
	}
	o.jobsWG.Add(1)
	o.closeMu.RUnlock()

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Type:      "scan",
		Target:    target,
		Mode:      mode,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	// Jobs outlive the request that started them.
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.jobsMu.Lock()
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	snapshot := *job
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go o.runScanJob(jobCtx, jobID, req, mode)
	return &snapshot, nil
}

func (o *Orchestrator) runScanJob(ctx context.Context, jobID string, req ScanRequest, mode Mode) {
	defer o.jobsWG.Done()
	defer func() {
		o.jobsMu.Lock()
		cancel := o.jobCancels[jobID]
		delete(o.jobCancels, jobID)
		j := o.jobs[jobID]
		if j != nil {
			j.EndedAt = time.Now().UTC()
		}
		o.jobsMu.Unlock()
		if cancel != nil {
			cancel()
		}

		// Close events channel so websocket loop can terminate cleanly
		if j != nil && j.Events != nil {
			close(j.Events)
		}
		if ttl := o.cfg.JobRetentionTime; ttl > 0 {
			time.AfterFunc(ttl, func() { o.forgetJob(jobID) })
		}
	}()

	o.setStatus(jobID, JobRunning, "")
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventProgress, Stage: "scan", Processed: 0, Total: scanStages})

	var (
		rec *reportstore.Record
		err error
	)
	if req.HTML != "" {
		rec, err = o.ScanHTML(ctx, req.HTML, req.Source)
	} else {
		rec, err = o.ScanURL(ctx, req.URL, mode)
	}

	if ctx.Err() != nil || errors.Is(err, ErrClosed) {
		msg := context.Canceled.Error()
		if ctx.Err() != nil {
			msg = ctx.Err().Error()
		}
		o.setStatus(jobID, JobCanceled, msg)
		return
	}
	if err != nil {
		o.logger.Warn("scan job failed",
			logging.Field{Key: "job_id", Value: jobID},
			logging.Field{Key: "error", Value: err.Error()})
		o.setStatus(jobID, JobFailed, err.Error())
		return
	}

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventProgress, Stage: "stored", Processed: scanStages, Total: scanStages})
	summary := reportstore.Summarize(rec)
	o.updateJob(jobID, func(j *Job) {
		j.Status = JobDone
		j.ReportID = rec.ID
		j.Summary = &summary
	})
	o.emitJobEvent(jobID, JobEvent{
		JobID:    jobID,
		Type:     JobEventResult,
		Status:   JobDone,
		ReportID: rec.ID,
		Summary:  &summary,
	})
}

func (o *Orchestrator) forgetJob(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok && !j.EndedAt.IsZero() {
		delete(o.jobs, jobID)
	}
}

// CancelJob is a no-op for unknown or finished jobs.
func (o *Orchestrator) CancelJob(jobID string) {
	o.jobsMu.Lock()
	cancel := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a copy of the job, or nil when it is unknown.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}

// ListJobs returns copies of all retained jobs, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		cp := *j
		out = append(out, &cp)
	}
	o.jobsMu.Unlock()
	sort.SliceStable(out, func(a, b int) bool { return out[a].StartedAt.Before(out[b].StartedAt) })
	return out
}
