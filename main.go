package main

import "github.com/papapumpkin/shipyard/cmd"

func main() {
	cmd.Execute()
}
