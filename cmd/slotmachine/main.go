// Command slotmachine loads a conference descriptor, builds and solves its
// MILP model, and reports the result: config, then persistence, then the
// solve itself, as a one-shot CLI run rather than a long-lived server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
