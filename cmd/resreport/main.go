package main

import "github.com/stepanpomazov/resource-management/internal/cli"

func main() {
	cli.Execute()
}
