package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"minichat/internal/client"
	"minichat/pkg/config"
)

func main() {
	cfg := config.LoadClientConfig()

	model := client.NewApp(cfg)

	if err := tea.NewProgram(model, tea.WithAltScreen()).Start(); err != nil {
		log.Fatalf("client exited: %v", err)
	}
}
