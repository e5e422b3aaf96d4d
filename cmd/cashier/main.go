package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tilldesk/minimart/internal/checkout"
	"github.com/tilldesk/minimart/internal/config"
	"github.com/tilldesk/minimart/internal/httpx"
	kafkax "github.com/tilldesk/minimart/internal/kafka"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/orders"
	"github.com/tilldesk/minimart/internal/postgres"
	"github.com/tilldesk/minimart/internal/redisx"
	"github.com/tilldesk/minimart/internal/restock"
	"github.com/tilldesk/minimart/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	// Status bus: mirror workflow action text into the log
	bus := notify.NewBus()
	_, statusCh := bus.Subscribe()
	go func() {
		for s := range statusCh {
			log.Printf("status: %s", s)
		}
	}()

	// Workflows & handlers
	stockSvc := &stock.Postgres{DB: db}
	orderSvc := &orders.Postgres{DB: db}
	router := httpx.NewRouter()
	ch := &httpx.CashierHandler{
		Checkout: checkout.New(stockSvc, orderSvc, bus),
		Producer: prod,
		Redis:    rdb,
		Service:  cfg.ServiceName + "-cashier",
	}
	ch.Register(router)
	bh := &httpx.BackdoorHandler{Restock: restock.New(stockSvc, bus)}
	bh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("cashier HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
	cancel()
}
