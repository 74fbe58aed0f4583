// Package memory provides in-memory adapters for every port: a snapshot store,
// a config source, a scripted executor, a recording notifier and a recording host.
// They back tests and embedded hosts that need no external infrastructure.
package memory
