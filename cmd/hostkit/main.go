// Command hostkit runs controller lifecycle scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/hostkit/cmd/hostkit/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
