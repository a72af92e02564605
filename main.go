package main

import "github.com/brogergvhs/mandl/cmd"

func main() {
	cmd.Execute()
}
