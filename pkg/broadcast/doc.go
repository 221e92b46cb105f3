// Package broadcast fans typed messages out to in-process subscribers.
//
// Publishing never blocks: each subscriber owns a buffered channel, and a
// message that does not fit in a full buffer is dropped for that subscriber
// only. Drops are counted so operators can tell when a consumer falls behind.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[jobqueue.Outcome](64)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx) // closed automatically when ctx is cancelled
//	go func() {
//		for msg := range sub.Receive() {
//			log.Info("outcome", "job_id", msg.Data.JobID)
//		}
//	}()
//
//	_ = b.Publish(ctx, outcome)
package broadcast
