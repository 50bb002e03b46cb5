package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/optimisation/cmd/minimise/cmd"
)

func main() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
