package sparkbridge_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/sparkbridge"
	"github.com/aretw0/sparkbridge/pkg/adapters/memory"
	"github.com/aretw0/sparkbridge/pkg/config"
	"github.com/aretw0/sparkbridge/pkg/domain"
)

// ExampleNew demonstrates how to embed a Kernel with in-memory collaborators.
// This is useful for testing, or when the executor lives in the same process.
func ExampleNew() {
	exec := memory.NewExecutor()
	source := memory.NewSource(map[string]string{
		config.DefaultIdentityKey: "alice",
		config.DefaultSecretKey:   "s3cret",
		config.DefaultEndpointKey: "http://livy:8998",
	})

	kernel, err := sparkbridge.New(config.DefaultSettings(), exec, sparkbridge.WithConfigSource(source))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if _, err := kernel.Execute(ctx, "%sql show tables", false); err != nil {
		log.Fatal(err)
	}
	if err := kernel.Shutdown(ctx, false); err != nil {
		log.Fatal(err)
	}

	for _, code := range exec.Codes() {
		fmt.Printf("%q\n", code)
	}

	// Output:
	// "%spark add SparkBridge python url=http://livy:8998;username=alice;password=s3cret skip"
	// "%load_ext remotespark"
	// "%%spark -c sql\nshow tables"
	// "%spark cleanup"
}

// ExampleKernel_Execute_faulted shows that a failed cell faults the session until shutdown.
func ExampleKernel_Execute_faulted() {
	exec := memory.NewExecutor().
		ReplyTo("%%spark\n1/0", memory.Reply{Result: domain.ErrorResult("division by zero")})
	source := memory.NewSource(map[string]string{"U": "u", "P": "p", "E": "e"})

	settings := config.DefaultSettings()
	settings.Keys = domain.ConfigKeys{Identity: "U", Secret: "P", Endpoint: "E"}

	kernel, err := sparkbridge.New(settings, exec, sparkbridge.WithConfigSource(source))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, err = kernel.Execute(ctx, "1/0", false)
	fmt.Println(errors.Is(err, domain.ErrDirectiveFailed))

	_, err = kernel.Execute(ctx, "1+1", false)
	fmt.Println(errors.Is(err, domain.ErrSessionFaulted))

	_ = kernel.Shutdown(ctx, true)
	fmt.Println(kernel.State().Phase)

	// Output:
	// true
	// true
	// fresh
}
