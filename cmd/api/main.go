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

	"github.com/grocerly/checkout/internal/cart"
	"github.com/grocerly/checkout/internal/checkout"
	"github.com/grocerly/checkout/internal/config"
	"github.com/grocerly/checkout/internal/httpx"
	kafkax "github.com/grocerly/checkout/internal/kafka"
	"github.com/grocerly/checkout/internal/orders"
	"github.com/grocerly/checkout/internal/postgres"
	"github.com/grocerly/checkout/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	placedProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placedProd.Start(ctx)
	cancelledProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	cancelledProd.Start(ctx)

	checkoutSvc := &checkout.Service{Store: &checkout.PGStore{DB: db}}
	cartSvc := &cart.Service{DB: db}
	orderSvc := &orders.Service{DB: db}

	router := httpx.NewRouter()
	(&httpx.CheckoutHandler{Service: checkoutSvc, Orders: orderSvc, Producer: placedProd, Redis: rdb, Name: cfg.ServiceName}).Register(router)
	(&httpx.CartHandler{Service: cartSvc}).Register(router)
	(&httpx.OrdersHandler{Service: orderSvc, Producer: cancelledProd, Redis: rdb, Name: cfg.ServiceName}).Register(router)
	(&httpx.CatalogHandler{DB: db}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placedProd.Close()
	cancelledProd.Close()
	cancel()
	placedProd.WaitClosed()
	cancelledProd.WaitClosed()
}
