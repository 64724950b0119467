package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukerupert/daybook/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "daybook: %v\n", err)
		os.Exit(1)
	}
}
