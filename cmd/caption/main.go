package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/almostcrackd/captionboard/internal/client"
	"github.com/almostcrackd/captionboard/internal/logger"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "warn",
		Format:      "text",
		ServiceName: "captionboard-cli",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	filePath := flag.String("file", "", "Path to the image file to caption")
	serverURL := flag.String("server", "http://localhost:8080", "Caption service base URL")
	token := flag.String("token", os.Getenv("CAPTIONBOARD_TOKEN"), "Bearer token for the caption service")
	contentType := flag.String("content-type", "", "Declared content type; inferred from the file extension when empty")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall pipeline timeout")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: caption -file <image> [-server URL] [-token TOKEN]")
		os.Exit(2)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open image file")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Ctrl-C aborts the run mid-stage
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	orchestrator := client.NewOrchestrator(*serverURL)

	// Report stage transitions while the run is in flight
	done := make(chan struct{})
	go func() {
		last := orchestrator.Stage()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if stage := orchestrator.Stage(); stage != last && stage != client.StageIdle {
					fmt.Printf("» %s\n", stage)
					last = stage
				}
			}
		}
	}()

	captions, err := orchestrator.Run(ctx, *token, client.Upload{
		Reader:       f,
		Filename:     filepath.Base(*filePath),
		DeclaredType: *contentType,
	})
	close(done)
	if err != nil {
		fmt.Fprintf(os.Stderr, "caption run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%d captions for %s:\n", len(captions), filepath.Base(*filePath))
	for i, caption := range captions {
		fmt.Printf("%2d. %s\n", i+1, caption)
	}
}
