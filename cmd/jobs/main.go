// Package main is the entry point for the background job service.
package main

import (
	"context"
	"os"

	"github.com/sportolo/jobs/cmd/jobs/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
