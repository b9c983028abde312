// main is the entry point for the dailyxp CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/dailyxp/cmd"
	"github.com/huangsam/dailyxp/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
