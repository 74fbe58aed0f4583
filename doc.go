/*
Package sparkbridge forwards notebook cells to a remote Spark session driven through
"magic" directives.

A Kernel owns one remote session. The session is registered lazily on the first
Execute: credentials are resolved from a ConfigSource, a connection string is built
and two bootstrap directives are dispatched (session registration and loading of the
magics extension). Cell code is then rewritten into a session directive and sent to
the Executor.

# Phases

A session is Fresh, Active or Faulted. Any failed directive faults the session with a
message of the form

	<label>
	Exception details:
		"<error value>"

and every later Execute is rejected until Shutdown resets the session to Fresh.
A failed bootstrap directive additionally asks the host to shut down.

# Cell grammar

A cell whose first line starts with %sql or %hive (single or double marker) is routed
to that sub-language:

	%sql select * from t   ->   %%spark -c sql
	                            select * from t

Everything else runs in the session's default language:

	print(1)               ->   %%spark
	                            print(1)

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/sparkbridge"
		"github.com/aretw0/sparkbridge/pkg/adapters/process"
		"github.com/aretw0/sparkbridge/pkg/config"
	)

	func main() {
		exec, err := process.NewExecutor(process.Config{Command: "./magics-bridge"})
		if err != nil {
			log.Fatal(err)
		}

		// Credentials come from SPARK_USERNAME, SPARK_PASSWORD and SPARK_URL.
		kernel, err := sparkbridge.New(config.DefaultSettings(), exec)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		defer kernel.Shutdown(ctx, false)

		if _, err := kernel.Execute(ctx, "%sql show tables", false); err != nil {
			log.Println(err)
		}
	}
*/
package sparkbridge
