package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	demo "voltage_wallet_demo"
	"voltage_wallet_demo/pkg/config"
	"voltage_wallet_demo/pkg/eventbus"
	"voltage_wallet_demo/pkg/handler"
	"voltage_wallet_demo/pkg/service"
	"voltage_wallet_demo/pkg/session"
	"voltage_wallet_demo/pkg/voltage"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting voltage wallet demo")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env loaded: %s", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("configuration: %s", err)
	}
	logrus.WithFields(logrus.Fields{
		"base_url": cfg.Voltage.BaseURL,
		"network":  cfg.Voltage.Network,
		"wallet":   cfg.Voltage.WalletID,
	}).Info("configuration loaded")

	client, err := voltage.New(cfg.Voltage)
	if err != nil {
		logrus.Fatalf("voltage client: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New()
	sessions := session.NewManager(ctx)
	services := service.NewService(client, cfg, bus)
	go services.Balance.Run(ctx)
	go sessions.RunReaper(ctx, cfg.Server.SessionIdle)

	handlers := handler.NewHandler(services, sessions, cfg.Server.AllowOrigins)
	srv := new(demo.Server)
	go func() {
		if err := srv.Run(cfg, handlers.InitRoute()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server: %s", err)
		}
	}()
	logrus.WithFields(logrus.Fields{
		"port":          cfg.Server.Port,
		"write_timeout": demo.WriteTimeout(cfg.Monitor),
	}).Info("http server started")

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http server shutdown: %s", err)
	}
	sessions.CloseAll()
}
