package main

import "github.com/naka-gawa/github-recap/cmd"

func main() {
	cmd.Execute()
}
