package main

import (
	"fmt"
	"os"

	"bibinspect/src/cmd/bibinspect/inspectcmd"
)

var rootCmd = inspectcmd.New()

func execute() error {
	return rootCmd.Execute()
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
