package main

import (
	"github.com/skylex-dev/skylex/internal/cli"
)

func main() {
	cli.Execute()
}
