package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// AnalyticsEvent mirrors the API's analytics event wire format
type AnalyticsEvent struct {
	ID         string         `json:"id"`
	PlayerID   string         `json:"playerId,omitempty"`
	Name       string         `json:"eventName"`
	Parameters map[string]any `json:"parameters,omitempty"`
	ClientTime int64          `json:"timestamp,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

var eventNames = []string{
	"game_started", "game_over", "continue_used", "coin_collected",
	"skin_equipped", "mission_completed", "shop_opened", "ad_watched",
	"daily_streak_claimed", "settings_changed",
}

var playerPrefixes = []string{
	"Jet", "Sky", "Nimbus", "Comet", "Rocket", "Turbo", "Aero", "Zoom",
	"Blaze", "Cloud", "Falcon", "Hawk", "Nova", "Pilot", "Swift", "Wing",
}

func playerName(idx int) string {
	prefix := playerPrefixes[idx%len(playerPrefixes)]
	return fmt.Sprintf("%s%d", prefix, idx/len(playerPrefixes)+1)
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "analytics-events", "Kafka topic")
	totalPlayers := flag.Int("players", 500, "Simulated player pool size")
	eventsPerSecond := flag.Int("rate", 50, "Events per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Printf("Analytics event producer: brokers=%s topic=%s players=%d rate=%d/s\n",
		*brokers, *topic, *totalPlayers, *eventsPerSecond)

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdown := func() {
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("Done. Sent: %d, Errors: %d\n",
			atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	interval := time.Second / time.Duration(*eventsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("Duration reached, shutting down...")
				shutdown()
				return
			}

			playerID := playerName(rand.Intn(*totalPlayers))
			name := eventNames[rand.Intn(len(eventNames))]
			event := AnalyticsEvent{
				ID:       uuid.NewString(),
				PlayerID: playerID,
				Name:     name,
				Parameters: map[string]any{
					"sessionLength": rand.Intn(600),
					"score":         rand.Intn(400),
				},
				ClientTime: time.Now().UnixMilli(),
				ReceivedAt: time.Now().UTC(),
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal event: %v", err)
				continue
			}
			producer.Input() <- &sarama.ProducerMessage{
				Topic: *topic,
				Key:   sarama.StringEncoder(playerID),
				Value: sarama.ByteEncoder(data),
			}

		case <-statsTicker.C:
			fmt.Printf("[%s] Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
