package jobqueue

import "time"

// readyQueue is the FIFO of job ids awaiting execution.
// Delayed retries circulate through it until they are due, so no timer is needed.
type readyQueue struct {
	ids []string
}

func (q *readyQueue) push(id string) {
	q.ids = append(q.ids, id)
}

func (q *readyQueue) pop() string {
	id := q.ids[0]
	q.ids[0] = ""
	q.ids = q.ids[1:]
	return id
}

func (q *readyQueue) len() int {
	return len(q.ids)
}

func (q *readyQueue) reset() {
	q.ids = nil
}

// next performs one bounded pass over the ids present when it starts:
//   - ids whose job is no longer queued are dropped
//   - ids whose job is not yet available move to the tail
//   - the first available job is removed and returned
//
// It returns nil when the pass finds nothing ready. It never blocks.
func (q *readyQueue) next(store *jobStore, now time.Time) *storedJob {
	n := q.len()
	for range n {
		id := q.pop()
		job, ok := store.get(id)
		if !ok || job.Status != StatusQueued {
			continue
		}
		if job.AvailableAt.After(now) {
			q.push(id)
			continue
		}
		return job
	}
	return nil
}
