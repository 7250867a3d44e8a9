package main

import "github.com/jwulff/recite/internal/cli"

func main() {
	cli.Execute()
}
