package main

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/publish"
	"DrawSpectra/internal/status"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	log.Println("Starting ds-watch...")

	cfg, err := config.LoadOrDefault("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Publisher.NATSURL == "" {
		log.Fatalf("No nats_url configured in the publisher section.")
	}

	sub, err := publish.NewSubscriber(cfg.Publisher)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Start(func(r status.Report) {
		log.Printf("Run %s, iteration %d, %d distinct draws:\n%s", r.RunID, r.Iteration, r.Distinct, status.FormatTop(r.Top))
		log.Printf("Most frequent numbers: %s", status.FormatNumbers(r.Numbers, 10))
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down ds-watch.")
}
