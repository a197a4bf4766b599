// Command rouvy is a command line client for the Rouvy riders site.
package main

import (
	"os"

	"github.com/jamesprial/go-rouvy-api-wrapper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
