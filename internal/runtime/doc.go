// Package runtime implements the session lifecycle: the Fresh / Active / Faulted
// state machine that bootstraps the remote session on first use, forwards
// translated cells, records the terminal fault and cleans up on shutdown.
//
// A Lifecycle is not safe for concurrent use. The host delivers one request at a
// time; hosts that accept concurrent requests serialize through pkg/session.
package runtime
