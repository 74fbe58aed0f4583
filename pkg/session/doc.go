/*
Package session keeps the live kernels of a multi-session host.

It serializes calls per session with reference-counted local locks and, optionally,
a distributed lock so several replicas can share one snapshot store.
*/
package session
