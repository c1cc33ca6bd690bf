package main

import (
	"context"
	"os"
)

func main() {
	root := newRootCommand()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(context.Background()); err != nil {
		fatal(err)
	}
}
