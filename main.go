// Package main is the entry point of the assetload CLI.
package main

import (
	"github.com/huangsam/assetload/cmd"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Error running assetload", err)
	}
}
