package main

import (
	"github.com/bacalhau-project/gtbarrier/cmd/cli"
)

func main() {
	cli.Execute()
}
