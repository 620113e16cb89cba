package main

import "github.com/partnerdash/gateway/internal/cli"

func main() {
	cli.Execute()
}
