// main is the entry point for the yieldline CLI.
package main

import (
	"github.com/mfglab/yieldline/cmd"
	"github.com/mfglab/yieldline/internal/contract"
	"github.com/mfglab/yieldline/internal/iostore"
)

func main() {
	err := cmd.Execute()
	iostore.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
