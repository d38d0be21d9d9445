package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"typerace/internal/tui"
)

func main() {
	addr := flag.String("addr", "ws://localhost:4000/ws", "race server websocket address")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *name == "" {
		if user := os.Getenv("USER"); user != "" {
			*name = user
		} else {
			*name = "racer"
		}
	}

	conn, err := tui.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	p := tea.NewProgram(tui.NewModel(conn, *name), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
