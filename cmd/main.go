package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"

	"github.com/mateusmacedo/ticket-kiosk/internal/config"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/application"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/domain"
	"github.com/mateusmacedo/ticket-kiosk/internal/kiosk/infrastructure"
	"github.com/mateusmacedo/ticket-kiosk/internal/transport"
	pkgDomain "github.com/mateusmacedo/ticket-kiosk/pkg/domain"
	pkgInfra "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/ticket-kiosk/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("ticket-kiosk", pflag.ContinueOnError)
	cfg.BindFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appLogger, err := zapAdapter.NewZapAppLogger(zapAdapter.Options{AppName: cfg.AppName, Level: cfg.LogLevel})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return domain.IOError{Op: "create export dir", Path: cfg.ExportDir, Err: err}
	}

	eventBus, err := transport.NewEventBus(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			appLogger.Error(context.Background(), "Erro ao encerrar o barramento de eventos", map[string]interface{}{"error": err.Error()})
		}
	}()

	kioskSlice := kiosk.NewKioskSlice(kiosk.Options{
		ExportBus: pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.ExportBoardingPassData], application.ExportBoardingPassData](appLogger),
		FindBus:   pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindTicketData], application.FindTicketData, domain.Ticket](appLogger),
		ListBus:   pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.ListTicketsData], application.ListTicketsData, []domain.Ticket](appLogger),
		EventBus:  eventBus,
		Factory: domain.NewTicketFactory(
			domain.WithPrefix(cfg.TicketPrefix),
			domain.WithRandom(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))),
		),
		ExportDir: cfg.ExportDir,
		Logger:    appLogger,
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(infrastructure.RequestContext)
	router.Use(middleware.Recoverer)
	kioskSlice.RegisterRoutes(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			appLogger.Info(ctx, "Sinal capturado", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "Server starting", map[string]interface{}{
			"address":   cfg.Addr,
			"transport": string(cfg.Events),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(ctx, "Erro ao iniciar o servidor", map[string]interface{}{"error": err.Error()})
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info(context.Background(), "Encerrando servidor...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), "Erro ao encerrar servidor", map[string]interface{}{"error": err.Error()})
		return err
	}

	appLogger.Info(context.Background(), "Servidor encerrado", map[string]interface{}{"sales": kioskSlice.Sales()})
	return nil
}
