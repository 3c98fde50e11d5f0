package main

import "github.com/bz888/deepchat/cmd"

func main() {
	cmd.Execute()
}
