package main

import "tutor-registry/cmd"

func main() {
	cmd.Execute()
}
