/*
Package ports defines the driven ports (interfaces) of the Spark bridge.

These interfaces decouple the session lifecycle from the host that embeds it and
from the remote session, allowing the core to run inside a notebook kernel, an HTTP
server, an MCP server or a test with in-memory fakes.

# Key Interfaces

  - Executor: dispatches a directive to the remote session's magic interpreter.
  - ConfigSource: looks up credentials by key name.
  - ErrorNotifier: reports errors to the user (fire and forget).
  - HostShutdown: terminates or restarts the host.
  - StateStore: persists session snapshots for inspection.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
