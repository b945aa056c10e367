package main

import (
	"log"

	"github.com/feedctl/feedctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
