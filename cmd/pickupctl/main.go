package main

import "github.com/NetroScript/tf2pickup-server/internal/cli"

func main() {
	cli.Execute()
}
