package main

import (
	"github.com/dwallet-labs/dwallet-network-sub008/cmd/mpc-node/cmd"
)

func main() {
	cmd.Execute()
}
