package ws

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// RedisBridge relays room broadcasts between gateway instances over a Redis
// pub/sub channel. Each instance tags frames with its own id and ignores its
// echoes.
type RedisBridge struct {
	client     *redis.Client
	hub        *Hub
	channel    string
	instanceID string
	log        zerolog.Logger
}

type bridgeFrame struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Data   json.RawMessage `json:"data"`
}

func NewRedisBridge(client *redis.Client, hub *Hub, channel, instanceID string, log zerolog.Logger) *RedisBridge {
	b := &RedisBridge{
		client:     client,
		hub:        hub,
		channel:    channel,
		instanceID: instanceID,
		log:        log,
	}
	hub.SetRelay(b)
	return b
}

// Publish implements Relay. Failures are logged and dropped; local delivery
// already happened.
func (b *RedisBridge) Publish(room string, data []byte) {
	frame, _ := json.Marshal(bridgeFrame{Origin: b.instanceID, Room: room, Data: data})
	if err := b.client.Publish(context.Background(), b.channel, frame).Err(); err != nil {
		b.log.Warn().Err(err).Str("room", room).Msg("gateway relay publish failed")
	}
}

// Run subscribes and re-delivers remote frames locally until ctx ends.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				b.log.Warn().Err(err).Msg("gateway relay: bad frame")
				continue
			}
			if frame.Origin == b.instanceID {
				continue
			}
			b.hub.DeliverLocal(frame.Room, frame.Data, nil)
		}
	}
}
