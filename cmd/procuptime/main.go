package main

import (
	"os"

	"github.com/procuptime/procuptime/internal/logging"
)

func main() {
	err := newRootCmd().Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
