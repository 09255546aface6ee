package main

import "github.com/dododb/dodo/cmd"

func main() {
	cmd.Execute()
}
