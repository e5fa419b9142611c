// Command possession runs the ball-possession streaming pipeline end to
// end: parse --metadata, drive --stream through the fetcher/stats core,
// and render periodic possession tables. It exits 0 on success, 1 on an
// argument error or a missing input file.
package main

import (
	"fmt"
	"os"

	"github.com/debs2013/possession/internal/config"
	"github.com/debs2013/possession/internal/pipeline"
)

func main() {
	cfg := config.Load(os.Args[1:])

	if err := pipeline.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "possession: %v\n", err)
		os.Exit(1)
	}
}
