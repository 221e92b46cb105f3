// Package jobapi exposes the job queue over HTTP.
//
// Routes, mounted with Handler.Routes under any chi router:
//
//	GET  /v1/system/background-jobs/metrics
//	GET  /v1/system/background-jobs/dead-letters
//	GET  /v1/system/background-jobs/{jobID}
//	POST /v1/system/background-jobs
//
// Successful responses use the envelope {"data": ..., "meta": {"status": "ok",
// "timestamp": ...}}. Errors render {"error": {"code": ..., "message": ...}}.
package jobapi
