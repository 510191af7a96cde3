// Command stillctl is the operator CLI: schema migrations, one-shot sweeps
// and per-user MIA status.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
