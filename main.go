package main

import (
	"os"

	"github.com/talenttrack/hr-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
