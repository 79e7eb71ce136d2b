package main

import (
	"github.com/hookshot-sh/hookshot/cmd/hookshot/commands"
)

func main() {
	commands.Execute()
}
