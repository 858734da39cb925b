package main

import (
	"github.com/NoamAriel/sxn/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
