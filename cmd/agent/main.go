package main

import (
	"os"

	"github.com/vagrants/blackbird-go/cmd/root"
)

func main() {

	if err := root.GetRootCommand().Execute(); err != nil {

		os.Exit(1)
	}
}
