package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"autoposter/agents/poster"
	"autoposter/shared/config"
	"autoposter/shared/scheduler"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <run-once|schedule|show-config>\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if command == "show-config" {
		fmt.Println(cfg.DebugJSON())
		return
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	agent := poster.NewPosterAgent(cfg)
	s := scheduler.New(cfg, agent)

	switch command {
	case "run-once":
		fmt.Println("Running once...")
		if err := agent.Initialize(); err != nil {
			log.Fatalf("Failed to initialize agent: %v", err)
		}
		if err := s.RunOnce(ctx); err != nil {
			log.Fatalf("Failed to run: %v", err)
		}
	case "schedule":
		fmt.Println("Starting scheduler...")
		if err := s.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Scheduler failed: %v", err)
		}
	default:
		usage()
	}
}
