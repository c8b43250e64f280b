package main

import "github.com/Laisky/laisky-support-bot/cmd"

func main() {
	cmd.Execute()
}
