package main

import (
	"fmt"
	"os"

	"github.com/tomz197/discoball/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "discoball: %v\n", err)
		os.Exit(1)
	}
}
