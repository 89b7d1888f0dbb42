// Command quill generates doc comments for source code using LLM backends.
package main

import (
	"fmt"
	"os"

	"github.com/quilldocs/quill/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
