package main

import "HeatGrid/cmd"

func main() {
	cmd.Execute()
}
