package main

import (
	"log"
	"net/http"
	"os"

	"seo-backend/internal/launcher"
	"seo-backend/internal/shared/config"
)

const defaultPort = "3000"

func main() {
	cfg := config.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	handler := launcher.New(cfg.DashboardCommand)
	log.Printf("Launcher listening on :%s", port)

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("launcher error: %v", err)
	}
}
