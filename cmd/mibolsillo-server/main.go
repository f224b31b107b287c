package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mibolsillo/server/internal/app"
	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	srv := server.NewServer(a)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logAccessURLs(a)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Logger.Fatal().Err(err).Msg("Server failed")
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Graceful shutdown failed")
	}

	common.PrintShutdownBanner(a.Logger)
}

// logAccessURLs logs the port plus every non-loopback IPv4 address the
// server is reachable on, for developers connecting from another device.
func logAccessURLs(a *app.App) {
	port := a.Config.Server.Port
	a.Logger.Info().Int("port", port).Msg("Server listening")

	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				a.Logger.Info().
					Str("url", fmt.Sprintf("http://%s:%d", ip4.String(), port)).
					Msg("Network access")
			}
		}
	}
}
