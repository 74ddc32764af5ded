package main

import "github.com/kamusis/classmap/cmd"

func main() {
	cmd.Execute()
}
