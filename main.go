package main

import "github.com/deliverus/foodstore/cmd"

func main() {
	cmd.Execute()
}
