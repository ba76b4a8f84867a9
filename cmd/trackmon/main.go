package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/robotalks/track.go/pkg/cli/sh"
	"github.com/robotalks/track.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/track.go/pkg/l1/msgs"
)

//go-build: CGO_ENABLED=0

var (
	mqttURL = "mqtt://localhost:1883/track/"
)

func init() {
	if val := os.Getenv("TRACK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

// format renders one bus packet. Station meta is JSON, everything else a
// Typed message.
func format(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/meta") {
		if len(payload) == 0 {
			return fmt.Sprintf("%s: offline", topic)
		}
		return fmt.Sprintf("%s: %s", topic, string(payload))
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("%s: bad message: %v", topic, err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
	}
	return fmt.Sprintf("%s: #%d %s", topic, typed.Sequence, sh.FormatMsg(msg))
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	broker, err := mqtt.ParseBrokerURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := broker.NewQueue()
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		log.Println(format(topic, payload))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
}
