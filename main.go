package main

import (
	"github.com/sergo9723/footbal-plan-bot/internal/cli"
)

func main() {
	cli.Execute()
}
