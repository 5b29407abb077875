// Command mocrun is a command-line interface for the 2-D deterministic
// neutron transport solver.
package main

import (
	"fmt"
	"os"

	"github.com/cpmech-moc/moctran/mocutil"
)

func main() {
	cfg := mocutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
