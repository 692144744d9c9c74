package main

import "github.com/lukman83/dishscout/cmd"

func main() {
	cmd.Execute()
}
