package jobqueue

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// idempotencyKey scopes a caller-chosen key to its submitter.
type idempotencyKey struct {
	submitter string
	key       string
}

// storedJob is the canonical record; fingerprint never leaves the store.
type storedJob struct {
	Job
	fingerprint string
}

// jobStore owns every job record and the idempotency index.
// It is not safe for concurrent use; Queue serializes access.
type jobStore struct {
	jobs          map[string]*storedJob
	byIdempotency map[idempotencyKey]string
	counter       int
}

func newJobStore() *jobStore {
	return &jobStore{
		jobs:          make(map[string]*storedJob),
		byIdempotency: make(map[idempotencyKey]string),
	}
}

// lookup returns the job registered for (submitter, key), if any.
func (s *jobStore) lookup(submitter, key string) (*storedJob, bool) {
	id, ok := s.byIdempotency[idempotencyKey{submitter: submitter, key: key}]
	if !ok {
		return nil, false
	}
	return s.jobs[id], true
}

// create assigns the next sequential id and indexes the new record.
func (s *jobStore) create(job Job, fingerprint string) *storedJob {
	s.counter++
	job.ID = fmt.Sprintf("bg-job-%06d", s.counter)

	record := &storedJob{Job: job, fingerprint: fingerprint}
	s.jobs[job.ID] = record
	s.byIdempotency[idempotencyKey{submitter: job.Submitter, key: job.IdempotencyKey}] = job.ID
	return record
}

func (s *jobStore) get(id string) (*storedJob, bool) {
	job, ok := s.jobs[id]
	return job, ok
}

// countByStatus is computed on demand so it can never drift from the records.
func (s *jobStore) countByStatus(status Status) int {
	n := 0
	for _, job := range s.jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}

// deadLetters returns snapshots ordered by (LastFailedAt or EnqueuedAt, ID).
func (s *jobStore) deadLetters() []Job {
	records := make([]*storedJob, 0)
	for _, job := range s.jobs {
		if job.Status == StatusDeadLetter {
			records = append(records, job)
		}
	}

	slices.SortFunc(records, func(a, b *storedJob) int {
		if c := deadLetterTime(a).Compare(deadLetterTime(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	out := make([]Job, 0, len(records))
	for _, job := range records {
		out = append(out, *job.clone())
	}
	return out
}

func deadLetterTime(job *storedJob) time.Time {
	if job.LastFailedAt != nil {
		return *job.LastFailedAt
	}
	return job.EnqueuedAt
}
