package main

import "github.com/openmeet/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
