package main

import "github.com/mcoot/brettonwoods/internal/cli"

func main() {
	cli.Execute()
}
