package export

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobStore persists export job metadata.
type JobStore interface {
	Save(ctx context.Context, job *Job) error
	Load(ctx context.Context, jobID string) (*Job, error)
}

// MongoJobStore keeps export jobs in a Mongo collection, upserted by jobId.
type MongoJobStore struct {
	col *mongo.Collection
}

func NewMongoJobStore(col *mongo.Collection) *MongoJobStore {
	return &MongoJobStore{col: col}
}

func (s *MongoJobStore) Save(ctx context.Context, job *Job) error {
	filter := bson.M{"jobId": job.JobID}
	opts := options.Update().SetUpsert(true)
	if _, err := s.col.UpdateOne(ctx, filter, bson.M{"$set": job}, opts); err != nil {
		return fmt.Errorf("save export job: %w", err)
	}
	return nil
}

func (s *MongoJobStore) Load(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := s.col.FindOne(ctx, bson.M{"jobId": jobID}).Decode(&job); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("load export job: %w", err)
	}
	return &job, nil
}

// MemoryJobStore is used when Mongo is unavailable and in unit tests.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*Job)}
}

func (s *MemoryJobStore) Save(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.JobID] = &cp
	return nil
}

func (s *MemoryJobStore) Load(ctx context.Context, jobID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	cp := *job
	return &cp, nil
}
