package main

import "github.com/MattVerwey/TopDeck-sub004/cmd/topdeck/commands"

func main() {
	commands.Execute()
}
