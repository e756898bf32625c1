package main

import "github.com/marcinmaslon/wolf-comm/cmd"

func main() {
	cmd.Execute()
}
