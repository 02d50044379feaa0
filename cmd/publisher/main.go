package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type pointMessage struct {
	PlowID    string     `json:"plow_id"`
	Timestamp int64      `json:"timestamp"`
	Coords    [2]float64 `json:"coords"`
	Events    []string   `json:"events"`
}

// plow carries a simulated position that drifts between ticks.
type plow struct {
	id       string
	lon, lat float64
}

var eventKinds = []string{"au", "su", "hi", "ps", "pu"}

func newPlow(i int) *plow {
	return &plow{
		id:  strconv.Itoa(1000 + i),
		lon: 24.90 + rand.Float64()*0.10,
		lat: 60.15 + rand.Float64()*0.06,
	}
}

func (p *plow) step() {
	// ~100m drift per tick
	p.lon += (rand.Float64() - 0.5) * 0.002
	p.lat += (rand.Float64() - 0.5) * 0.001
}

func randomEvents() []string {
	if rand.Float64() < 0.5 {
		return []string{}
	}
	return []string{eventKinds[rand.Intn(len(eventKinds))]}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [plow_count]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	plowCount := 5
	if len(os.Args) > 2 {
		if plowCount, err = strconv.Atoi(os.Args[2]); err != nil || plowCount <= 0 {
			fmt.Fprintf(os.Stderr, "error: plow_count must be a positive integer\n")
			os.Exit(1)
		}
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("plowtrack-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("mqtt connect", "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	fleet := make([]*plow, plowCount)
	ids := make([]string, plowCount)
	for i := range fleet {
		fleet[i] = newPlow(i)
		ids[i] = fleet[i].id
	}

	slog.Info("connected", "broker", broker, "interval_s", intervalSec, "plows", ids)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		p := fleet[rand.Intn(len(fleet))]
		p.step()

		msg := pointMessage{
			PlowID:    p.id,
			Timestamp: time.Now().Unix(),
			Coords:    [2]float64{p.lon, p.lat},
			Events:    randomEvents(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fleet/plow/%s/point", p.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			slog.Warn("publish failed", "error", err, "topic", topic)
			continue
		}

		slog.Info("published", "topic", topic, "payload", string(payload))
	}
}
