// Package client talks to the kakeibo summary server.
//
// # Overview
//
// The Client interface is the transport contract the sync services depend
// on: PushExpenses submits the pending queue in one batch, FetchExpenses
// pages through server history and Ping probes reachability. HTTPClient is
// the JSON-over-HTTP implementation.
//
// # Configuration
//
// Base URL and access key come from a config.Provider on every call. A
// missing or malformed value fails with common.ErrConfiguration before any
// request is made. The access key travels in the X-API-Key header.
//
// # Error Handling
//
// Every request is bounded by a timeout. Failures are mapped to sentinel
// errors callers can match with errors.Is:
//
//   - common.ErrTimeout        : the deadline expired
//   - common.ErrAuthentication : the server answered 401
//   - common.ErrNetwork        : DNS, dial, TLS or connection failures
//
// Any other non-2xx answer is returned as *StatusError.
package client
