// Command admin manages account roles and bans.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cookconnect/internal/bootstrap"
	"cookconnect/internal/config"
	"cookconnect/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	bootstrap.InitLogging(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := run(context.Background(), db, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
