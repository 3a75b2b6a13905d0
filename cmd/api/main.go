package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"seo-backend/internal/shared/config"
	"seo-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	promptForCredentials(&cfg)

	r, err := server.NewRouter(cfg)
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// promptForCredentials asks on stdin for any DataForSEO credential missing
// from the environment.
func promptForCredentials(cfg *config.Config) {
	if cfg.DataForSEOLogin != "" && cfg.DataForSEOPass != "" {
		return
	}
	reader := bufio.NewReader(os.Stdin)
	if cfg.DataForSEOLogin == "" {
		cfg.DataForSEOLogin = readLine(reader, "DataForSEO login: ")
	}
	if cfg.DataForSEOPass == "" {
		cfg.DataForSEOPass = readLine(reader, "DataForSEO password: ")
	}
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
