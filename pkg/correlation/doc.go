// Package correlation carries correlation identifiers through contexts,
// HTTP requests and structured logs.
//
// A correlation id ties together everything that happened because of one
// external event: the HTTP request that enqueued a job, every attempt the
// queue makes at that job, and the log records each attempt writes.
//
//   - Middleware reuses a valid "X-Correlation-ID" header or generates a
//     UUIDv4, stores it in the request context and echoes it back.
//   - WithContext and FromContext store and read the id.
//   - LoggerExtractor plugs into pkg/logger so every record written with that
//     context carries a "correlation_id" attribute.
package correlation
