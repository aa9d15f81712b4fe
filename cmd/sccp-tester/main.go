// sccp-tester эмулирует SCCP телефоны и прогоняет сценарии против
// сервера управления вызовами.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
