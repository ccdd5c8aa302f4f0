package main

import "github.com/emiliopalmerini/mfocus/internal/cli"

func main() {
	cli.Execute()
}
