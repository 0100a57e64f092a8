package main

import "github.com/oshokin/chessclock/cmd/chessclock/cmd"

func main() {
	cmd.Execute()
}
