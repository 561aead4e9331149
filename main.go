package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"homevault/internal/backup"
	"homevault/internal/config"
	"homevault/internal/db"
	"homevault/internal/export"
	"homevault/internal/importer"
	"homevault/internal/mqtt"
	"homevault/internal/objstore"
	"homevault/internal/predict"
	"homevault/internal/redis"
	"homevault/internal/scheduler"
	"homevault/internal/taskqueue"
	"homevault/internal/telemetry"
	"homevault/internal/web"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConn, err := db.NewDB(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbConn.Close()

	redisClient := redis.NewRedisClient(cfg.Redis.Addr)

	objects, err := objstore.NewClient(objstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}

	// Service wiring: explicit construction, no global service registry
	exporter := export.NewManager(dbConn, cfg.App.ProductName)
	imp := importer.NewManager(dbConn)
	backupService := backup.NewService(dbConn, objects, exporter, imp)
	predictEngine := predict.NewEngine(dbConn)

	ingestor := telemetry.NewIngestor(dbConn)
	if err := ingestor.Start(mqttClient); err != nil {
		log.Fatalf("Failed to start telemetry ingest: %v", err)
	}

	taskqueue.SetBackupService(backupService)
	// Enqueue client must exist before the scheduler's first sweep fires
	taskqueue.InitClient(cfg.Redis.Addr)
	go taskqueue.StartWorkers(cfg.Redis.Addr)

	sched := scheduler.NewScheduler()
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	webServer := web.NewWebServer(web.Services{
		DB:        dbConn,
		Redis:     redisClient,
		JWTSecret: cfg.JWT.Secret,
		Export:    exporter,
		Import:    imp,
		Backup:    backupService,
		Predict:   predictEngine,
	})
	go webServer.Start(fmt.Sprintf(":%d", cfg.App.Port))

	go startMDNSServer(cfg.MDNS.LocalName)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	sched.Stop()
	taskqueue.StopWorkers()
	mqttClient.Disconnect(250)
	log.Println("Shutdown complete")
}

func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("Failed to resolve UDP4 address for mDNS:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("Failed to resolve UDP6 address for mDNS:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("Failed to listen on UDP4 for mDNS:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("Failed to listen on UDP6 for mDNS:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("Failed to start mDNS server:", err)
	}
}
