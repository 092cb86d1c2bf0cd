package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inkboard/internal/config"
	"inkboard/internal/server"
)

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&cfg.Server.Addr, "addr", cfg.Server.Addr, "listen address")
	fs.BoolVar(&cfg.Server.MDNS, "mdns", cfg.Server.MDNS, "advertise on the local network")
	fs.Float64Var(&cfg.Server.ActionsPerMinute, "rate", cfg.Server.ActionsPerMinute, "AI actions per minute per board (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg).Run(ctx)
}

func runBrowse() error {
	n := 0
	err := server.Browse(func(addr string) {
		n++
		fmt.Println(addr)
	})
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, "no inkboard servers found")
	}
	return nil
}
