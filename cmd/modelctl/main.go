package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/galp2508/shavzak-sub000/pkg/config"
	"github.com/galp2508/shavzak-sub000/pkg/learner"
)

func main() {
	// Load .env from project root
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	if len(os.Args) < 2 {
		fmt.Println("Usage: modelctl <stats|reset>")
		os.Exit(1)
	}

	settings := config.Load()
	store := learner.Open(settings.ModelPath)

	switch os.Args[1] {
	case "stats":
		stats := store.Stats()
		fmt.Printf("Model: %s\n", settings.ModelPath)
		fmt.Printf("  approvals:        %d\n", stats.Approvals)
		fmt.Printf("  rejections:       %d\n", stats.Rejections)
		fmt.Printf("  modifications:    %d\n", stats.Modifications)
		fmt.Printf("  total assignments: %d\n", stats.TotalAssignments)
	case "reset":
		if err := store.Reset(); err != nil {
			fmt.Printf("Error: could not reset model: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Model %s reset\n", settings.ModelPath)
	default:
		fmt.Printf("Unknown command %q\n", os.Args[1])
		os.Exit(1)
	}
}
