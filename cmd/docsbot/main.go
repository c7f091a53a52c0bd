// Command docsbot is the entry point for the documentation Q&A Discord bot.
// It connects to Discord, answers /ask questions from the Context7
// documentation API, and optionally serves Prometheus metrics.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/docsbot-go/cmd/docsbot/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
