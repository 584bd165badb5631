package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openStack).Execute(); err != nil {
		if !errors.Is(err, errGenerationFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
