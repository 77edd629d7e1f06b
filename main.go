package main

import "github.com/darmiel/doipv/cmd"

func main() {
	cmd.Execute()
}
