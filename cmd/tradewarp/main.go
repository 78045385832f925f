package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/dense-analysis/tradewarp/internal/app"
	"github.com/dense-analysis/tradewarp/internal/config"
	"github.com/dense-analysis/tradewarp/internal/logging"
	"github.com/dense-analysis/tradewarp/internal/route/account"
	"github.com/dense-analysis/tradewarp/internal/route/auth"
	"github.com/dense-analysis/tradewarp/internal/route/portfolio"
	"github.com/dense-analysis/tradewarp/internal/route/reference"
	"github.com/dense-analysis/tradewarp/internal/route/strategy"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func main() {
	settings, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %s\n", err)
		os.Exit(1)
	}

	log := logging.New(&settings.Log)
	defer log.Sync()

	if settings.Log.Debug {
		lax.EnableDebugMode()
	}

	application := app.New(settings, log)

	router := mux.NewRouter().StrictSlash(true)
	account.Register(router, application)
	auth.Register(router, application)
	portfolio.Register(router, application)
	strategy.Register(router, application)
	reference.Register(router, application)

	server := http.Server{
		Addr:    settings.Addr,
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "error", err)
		}
	}()

	log.Infow("server started", "addr", settings.Addr)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalw("server shutdown failed", "error", err)
	}

	log.Infow("server shut down successfully")
}
