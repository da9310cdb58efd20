package main

import (
	"os"

	"github.com/abi-scope/abiscope/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
