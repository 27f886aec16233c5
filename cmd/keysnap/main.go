package main

import "github.com/keysnap/keysnap/cmd/keysnap/commands"

func main() {
	commands.Execute()
}
