package main

import (
	"os"

	"github.com/designcoil/catalog-import/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
