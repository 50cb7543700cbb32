// Package main is the entry point for the mipforge CLI.
package main

import (
	"context"
	"log"
	"os"

	"github.com/neurosift/mipforge/cmd/mipforge/commands"
)

func main() {
	log.SetFlags(0)
	if err := commands.New().Execute(context.Background()); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
