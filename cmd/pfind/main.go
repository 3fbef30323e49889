package main

import "pfind/internal/cli"

func main() {
	cli.Execute()
}
