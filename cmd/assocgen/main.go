package main

import "martianoff/assocgen/cmd/assocgen/commands"

func main() {
	commands.Execute()
}
