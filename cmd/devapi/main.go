// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Donaldvibe. All rights reserved.

// devapi is an in-memory stand-in for the drop backend. It serves the
// storefront's full API surface so the TUI and the load generator can
// run without the production service: one seeded drop, a small
// catalogue, fake PayOS links, and a webhook endpoint that claims
// stock the same way the real one does.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/donaldvibe/storefront/cmd/devapi/internal/stubapi"
)

func main() {
	port := os.Getenv("DEVAPI_PORT")
	if port == "" {
		port = "3030"
	}

	stub := stubapi.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	stub.Routes(r)

	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down dev API...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("devapi listening on %s", addr)
	log.Printf("  point the storefront at it: STOREFRONT_API_URL=http://localhost%s", addr)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
