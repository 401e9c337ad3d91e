package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pbooth01/cli2ansible/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{ConfigPath: os.Getenv("CLI2ANSIBLE_CONFIG")}

	root, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
