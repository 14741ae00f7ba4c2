package main

import "pi-monitor/cmd"

func main() {
	cmd.Execute()
}
