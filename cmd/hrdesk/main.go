// Command hrdesk runs and queries the HR desk data layer.
package main

import (
	"fmt"
	"os"

	"hrdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
