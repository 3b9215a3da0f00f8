package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/helperkit/tagstore/internal/tag/repository"
	"github.com/helperkit/tagstore/pkg/logger"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job records one snapshot of the tag collection uploaded to object storage.
type Job struct {
	JobID     string    `bson:"jobId" json:"jobId"`
	ObjectKey string    `bson:"objectKey,omitempty" json:"objectKey,omitempty"`
	TagCount  int       `bson:"tagCount" json:"tagCount"`
	Status    string    `bson:"status" json:"status"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Uploader is the slice of the object-storage client the exporter needs.
// Satisfied by *storage.MinIOStorage.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// Service snapshots the full tag collection to object storage and records
// job metadata for later inspection.
type Service struct {
	tags     repository.Repository
	uploader Uploader
	jobs     JobStore
}

func NewService(tags repository.Repository, uploader Uploader, jobs JobStore) *Service {
	return &Service{tags: tags, uploader: uploader, jobs: jobs}
}

// Snapshot lists all tags, uploads them as a JSON document and persists the
// job record. A failed upload is still recorded, with Status "failed".
func (s *Service) Snapshot(ctx context.Context) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		JobID:     newJobID(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	list, err := s.tags.List(ctx)
	if err != nil {
		return s.fail(ctx, job, fmt.Errorf("list tags: %w", err))
	}
	job.TagCount = len(list)

	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return s.fail(ctx, job, fmt.Errorf("marshal tags: %w", err))
	}

	job.ObjectKey = fmt.Sprintf("tags/%s.json", now.Format("20060102T150405"))
	if err := s.uploader.UploadFile(ctx, job.ObjectKey, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		return s.fail(ctx, job, fmt.Errorf("upload snapshot: %w", err))
	}

	job.Status = StatusCompleted
	job.UpdatedAt = time.Now().UTC()
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save export job: %w", err)
	}
	logger.Infof("exported %d tags to %s (job %s)", job.TagCount, job.ObjectKey, job.JobID)
	return job, nil
}

// Load fetches a persisted export job by id. Returns nil when not found.
func (s *Service) Load(ctx context.Context, jobID string) (*Job, error) {
	return s.jobs.Load(ctx, jobID)
}

func (s *Service) fail(ctx context.Context, job *Job, cause error) (*Job, error) {
	job.Status = StatusFailed
	job.Error = cause.Error()
	job.UpdatedAt = time.Now().UTC()
	if err := s.jobs.Save(ctx, job); err != nil {
		logger.Warnf("could not record failed export job %s: %v", job.JobID, err)
	}
	return job, cause
}

func newJobID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("export_%d", time.Now().UnixNano())
	}
	return "export_" + hex.EncodeToString(b)
}
