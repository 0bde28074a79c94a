// Package decision defines the suspend/resume contract shared by the
// interactive engines.
//
// An engine runs until it needs a human answer, then returns a request from
// Step and waits. The driver answers through Resume. Exactly one request is
// outstanding at a time and there is no timeout; the driver cancels by
// cancelling the context passed to Drive.
package decision
