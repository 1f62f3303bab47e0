// Package httputil downloads SCORM packages over HTTP.
//
// [Client.Fetch] performs a GET with retry and a response size limit.
// Transient failures (connection errors, 5xx responses) are retried with
// exponential backoff through [Retry]; other failures are returned
// immediately as *errors.Error values:
//
//	NOT_FOUND      404 response
//	NETWORK_ERROR  connection failure or unexpected status
//	TIMEOUT        deadline exceeded
//	INVALID_INPUT  response larger than the configured limit
//
// Every request is reported to the HTTP hooks of the observability
// package.
package httputil
