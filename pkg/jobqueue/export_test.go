package jobqueue

// Reset clears all jobs, counters and handlers.
func (q *Queue) Reset() {
	q.reset()
}
