package main

import "zone-mirror/cmd"

func main() {
	cmd.Execute()
}
