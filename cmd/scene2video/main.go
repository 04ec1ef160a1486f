package main

import (
	"os"

	"github.com/ivlev/scene2video/cmd/scene2video/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
