package main

import (
	"os"

	"github.com/scan-io-git/scanio-flaws/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
