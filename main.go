package main

import "github.com/distbuild/packplan/cmd"

func main() {
	cmd.Execute()
}
