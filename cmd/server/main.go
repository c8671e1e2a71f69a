// Package main is the entry point for the lily2strudel API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/strudelkit/lily2strudel/pkg/api"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	libraries := flag.String("libraries", "patterns", "Comma-separated pattern library roots for sequence input")
	flag.Parse()

	fmt.Printf("Starting lily2strudel API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	cfg := api.ServerConfig{Libraries: strings.Split(*libraries, ",")}
	if err := api.StartServer(*port, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
