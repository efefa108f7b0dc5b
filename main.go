package main

import "github.com/agentic-research/switch/cmd"

func main() {
	cmd.Execute()
}
