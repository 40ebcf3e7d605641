package main

import (
	"log"

	"github.com/anoixa/bandpress/config"

	"github.com/anoixa/bandpress/cmd"
)

func main() {
	log.Printf("bandpress %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
