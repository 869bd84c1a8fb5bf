package main

import "github.com/sbessler/pyra/cmd"

func main() {
	cmd.Execute()
}
