package main

import (
	"log"

	"github.com/omnipress/publishq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
