package main

import (
	"log"

	"fooddetect/internal/app"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Printf("Server error: %v", err)
	}
}
