package main

import "github.com/kamusis/cjval/cmd"

func main() {
	cmd.Execute()
}
