// Command estatectl browses the property and blog lists of a SalemRE API
// in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("ESTATECTL_API", "http://localhost:8080"), "API base URL")
	token := flag.String("token", os.Getenv("ESTATECTL_TOKEN"), "bearer token; an admin token also lists non-public items")
	flag.Parse()

	views, err := newViews(*apiURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client := newAPIClient(*token)

	p := tea.NewProgram(newModel(views, client.list), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
