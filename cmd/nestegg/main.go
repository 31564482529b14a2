// Command nestegg is a terminal client for the NestEgg API. It drives the
// same cached repositories the mobile apps embed, so repeated reads inside a
// session hit the local cache instead of the network.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
