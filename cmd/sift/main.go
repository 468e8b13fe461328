package main

import (
	"os"

	"github.com/crimson-sun/sift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
