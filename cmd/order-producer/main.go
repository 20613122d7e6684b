// Command order-producer feeds the matching engine's intake topic with
// generated order requests, for local runs and load testing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
)

func randomID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	var result strings.Builder
	for i := 0; i < length; i++ {
		result.WriteByte(charset[rand.Intn(len(charset))])
	}
	return result.String()
}

// generateRequests builds a stream of plausible order submissions around a
// base price: 70% limit / 30% market, even buy/sell split, bids skewed below
// the base price and asks above it.
func generateRequests(count int, market string, basePrice, priceSpread float64) []orderbookv1.PlaceOrderRequest {
	requests := make([]orderbookv1.PlaceOrderRequest, count)

	for i := 0; i < count; i++ {
		kind := "limit"
		if rand.Float64() < 0.3 {
			kind = "market"
		}

		side := "sell"
		isBid := rand.Float64() < 0.5
		if isBid {
			side = "buy"
		}

		amount := 0.01 + rand.Float64()*9.99

		var price float64
		if kind == "limit" {
			if isBid {
				price = basePrice - rand.Float64()*priceSpread*0.8
			} else {
				price = basePrice + rand.Float64()*priceSpread*0.8
			}
			if price <= 0 {
				price = basePrice
			}
		}

		requests[i] = orderbookv1.PlaceOrderRequest{
			Op:     orderbookv1.OpPlace,
			Market: market,
			UserID: randomID(rand.Intn(4) + 6),
			Side:   side,
			Kind:   kind,
			Price:  decimal.NewFromFloat(price).Round(1),
			Amount: decimal.NewFromFloat(amount).Round(3),
		}
	}

	return requests
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka intake topic name")
		market      = flag.String("market", "BTC-USD", "Market symbol for generated orders")
		file        = flag.String("file", "", "JSON file with requests (optional, generates requests if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending requests")
		count       = flag.Int("count", 1000, "Number of requests to generate")
		basePrice   = flag.Float64("base-price", 3945.5, "Base price for generated orders")
		priceSpread = flag.Float64("price-spread", 200.0, "Price spread range")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var requests []orderbookv1.PlaceOrderRequest
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &requests); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d requests from file: %s", len(requests), *file)
	} else {
		log.Printf("Generating %d requests for %s...", *count, *market)
		requests = generateRequests(*count, *market, *basePrice, *priceSpread)
	}

	log.Printf("Sending requests to Kafka broker: %s, topic: %s", *brokers, *topic)
	log.Printf("Delay between requests: %v", *delay)

	for i, request := range requests {
		payload, err := json.Marshal(request)
		if err != nil {
			log.Printf("Failed to marshal request %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(request.Market),
			Value: payload,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send request %d: %v", i+1, err)
			continue
		}

		if (i+1)%100 == 0 || i == len(requests)-1 {
			if request.Kind == "market" {
				log.Printf("Sent request %d/%d: %s | %s %s | Amount: %s",
					i+1, len(requests), request.UserID, request.Kind, request.Side, request.Amount)
			} else {
				log.Printf("Sent request %d/%d: %s | %s %s | Amount: %s @ $%s",
					i+1, len(requests), request.UserID, request.Kind, request.Side, request.Amount, request.Price)
			}
		}

		if i < len(requests)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Successfully sent all %d requests!", len(requests))

	marketOrders := 0
	limitOrders := 0
	buyOrders := 0
	sellOrders := 0
	for _, request := range requests {
		if request.Kind == "market" {
			marketOrders++
		} else {
			limitOrders++
		}
		if request.Side == "buy" {
			buyOrders++
		} else {
			sellOrders++
		}
	}

	log.Printf("--- Summary ---")
	log.Printf("Total Requests: %d", len(requests))
	log.Printf("Market Orders: %d", marketOrders)
	log.Printf("Limit Orders: %d", limitOrders)
	log.Printf("Buy Orders: %d", buyOrders)
	log.Printf("Sell Orders: %d", sellOrders)
}
