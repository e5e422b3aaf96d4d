package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/tilldesk/minimart/internal/config"
	"github.com/tilldesk/minimart/internal/httpx"
	kafkax "github.com/tilldesk/minimart/internal/kafka"
	"github.com/tilldesk/minimart/internal/notify"
	"github.com/tilldesk/minimart/internal/orders"
	"github.com/tilldesk/minimart/internal/packing"
	"github.com/tilldesk/minimart/internal/postgres"
	"github.com/tilldesk/minimart/internal/redisx"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for packed events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPacked, 1024)
	prod.Start(ctx)

	// Status bus: mirror coordinator action text into the log
	bus := notify.NewBus()
	_, statusCh := bus.Subscribe()
	go func() {
		for s := range statusCh {
			log.Printf("status: %s", s)
		}
	}()

	orderSvc := &orders.Postgres{DB: db}
	coord := packing.NewCoordinator(orderSvc, bus, cfg.PollInterval)

	router := httpx.NewRouter()
	ph := &httpx.PackingHandler{
		Coordinator: coord,
		Producer:    prod,
		Redis:       rdb,
		Service:     cfg.ServiceName + "-packing",
	}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// Consumer warms the redis status cache from placed-order events.
	group := getenv("PACKING_GROUP", "packing-svc")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderPlaced, 2)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("packing coordinator polling every %s", cfg.PollInterval)
		return coord.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("packing consumer started: group=%s topic=%s", group, orders.TopicOrderPlaced)
		return cons.Start(gctx, func(ctx context.Context, m kafkago.Message) error {
			return warmStatus(ctx, rdb, m.Value)
		})
	})
	g.Go(func() error {
		log.Printf("packing HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("worker exit: %v", err)
	}
	prod.Close()
	prod.WaitClosed()
}

// warmStatus records a just-placed order as WAITING so status reads do not
// hit the database.
func warmStatus(ctx context.Context, rdb *redis.Client, body []byte) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(body, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "packing", env.EventID)
	if seen, _ := redisx.Exists(ctx, rdb, dkey); seen {
		return nil
	}
	_ = rdb.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, p.OrderNo)
	return rdb.Set(ctx, key, `{"status":"WAITING"}`, redisx.TTLStatusCache).Err()
}
