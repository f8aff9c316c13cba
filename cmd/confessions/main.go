package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	confessionscmd "github.com/louisbranch/confide.space/internal/cmd/confessions"
)

func main() {
	cfg, err := confessionscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CONFESSIONS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := confessionscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
