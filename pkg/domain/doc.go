/*
Package domain contains the core domain models of the Spark bridge.

It defines what flows between the host, the session lifecycle and the remote
session: resolved configuration, outbound directives, dispatch results, the tagged
session state and the errors that describe why execution stopped. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Configuration: identity, secret and endpoint used to register the remote session.
  - Directive: a magic command string plus the parameters it is dispatched with.
  - DispatchResult: what the executor reports back for one directive.
  - SessionState: the Fresh / Active / Faulted phase plus the fault message.
  - Snapshot: the persisted audit record of a session.
*/
package domain
