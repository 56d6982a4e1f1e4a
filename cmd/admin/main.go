package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/admin"
)

func main() {
	if err := admin.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
