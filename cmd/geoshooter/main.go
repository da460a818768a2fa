package main

import "github.com/mcoot/geoshooter/internal/cli"

func main() {
	cli.Execute()
}
