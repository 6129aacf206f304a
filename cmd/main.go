package main

import (
	"log"

	"dispatch-service/internal/app"
)

func main() {
	// Create application instance
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Run application
	if err := application.Run(); err != nil {
		log.Fatalf("Failed to run application: %v", err)
	}
}
