package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		// a canceled context means the operator hit ctrl-c; the
		// shutdown already logged whatever mattered
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "edustream: %v\n", err)
		}
		return 1
	}
	return 0
}
