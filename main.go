package main

import (
	"os"

	"github.com/ljmet/condorsub/cmd"
	"github.com/ljmet/condorsub/logger"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		logger.PrintSimpleError(err)
		os.Exit(1)
	}
}
