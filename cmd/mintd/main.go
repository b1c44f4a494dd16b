package main

import "github.com/treatbank/mintd/internal/cli"

func main() {
	cli.Execute()
}
