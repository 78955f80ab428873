package main

import (
	"os"

	"github.com/arthur-debert/mcargo/cmd/mcargo"
)

func main() {
	os.Exit(mcargo.Execute(os.Args[1:], mcargo.Deps{}))
}
