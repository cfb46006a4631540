// Command pubcorpus validates, indexes, exports, and serves a folder-per-post
// blog corpus.
package main

import (
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
