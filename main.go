package main

import "github.com/timekeepapp/timekeep/cmd/timekeep/commands"

func main() {
	commands.Execute()
}
