package main

import (
	"dahuaptz/internal/cli"
)

func main() {
	cli.Execute()
}
