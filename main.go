package main

import (
	"os"

	"github.com/iamMohdZiya/appAttendence/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
