package jobqueue

// counters are running totals; queue depth is deliberately absent and
// computed from the records instead.
type counters struct {
	totalEnqueued     int
	processedAttempts int
	succeeded         int
	failedAttempts    int
	retries           int
	deadLetters       int
	totalLatencyMS    float64
}

func (c *counters) recordAttempt(status AttemptStatus, latencyMS float64) {
	c.processedAttempts++
	c.totalLatencyMS += latencyMS

	switch status {
	case AttemptSucceeded:
		c.succeeded++
	case AttemptRetryScheduled:
		c.failedAttempts++
		c.retries++
	case AttemptDeadLetter:
		c.failedAttempts++
		c.deadLetters++
	}
}

func (c *counters) snapshot(queueDepth int) Metrics {
	m := Metrics{
		QueueDepth:        queueDepth,
		TotalEnqueued:     c.totalEnqueued,
		ProcessedAttempts: c.processedAttempts,
		Succeeded:         c.succeeded,
		FailedAttempts:    c.failedAttempts,
		Retries:           c.retries,
		DeadLetters:       c.deadLetters,
	}
	if c.processedAttempts > 0 {
		m.FailureRate = float64(c.failedAttempts) / float64(c.processedAttempts)
		m.AverageLatencyMS = c.totalLatencyMS / float64(c.processedAttempts)
	}
	return m
}
