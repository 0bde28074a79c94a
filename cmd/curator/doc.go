// Package main hosts the curator CLI entrypoint and command graph.
//
// Each scan runs as a decision engine from an internal package; the commands
// here only load configuration, answer the engine's questions on the
// terminal, and render results. A terminal that is not interactive declines
// every question, so unattended runs never rename or delete anything they
// would have asked about.
package main
