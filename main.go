package main

import "github.com/notargets/godirectional/cmd"

func main() {
	cmd.Execute()
}
