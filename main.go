package main

import "github.com/terraconstructs/sandaran/cmd"

func main() {
	cmd.Execute()
}
