// Command httpd runs the eval-analytics HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/evaldesk/eval-analytics/internal/bootstrap"
)

func main() {
	if err := bootstrap.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "eval-analytics: %v\n", err)
		os.Exit(1)
	}
}
