package main

import "photomesh/cmd"

func main() {
	cmd.Execute()
}
