package event

import (
	"context"
	"encoding/json"
	"fmt"

	"cinema_booking/model"

	"github.com/redis/go-redis/v9"
)

func SeatChannel(showtimeId uint) string {
	return fmt.Sprintf("showtime:%d", showtimeId)
}

// RedisSeatPublisher phát thay đổi ghế lên kênh showtime:<id>
type RedisSeatPublisher struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func NewRedisSeatPublisher(client *redis.Client) *RedisSeatPublisher {
	return &RedisSeatPublisher{client: client}
}

func (p *RedisSeatPublisher) PublishSeatEvent(ctx context.Context, ev model.SeatEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, SeatChannel(ev.ShowtimeId), payload).Err()
}

// Subscribe trả về luồng payload của một suất chiếu, đóng khi ctx kết thúc
func (p *RedisSeatPublisher) Subscribe(ctx context.Context, showtimeId uint) (<-chan []byte, func() error) {
	pubsub := p.client.Subscribe(ctx, SeatChannel(showtimeId))
	out := make(chan []byte)
	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, pubsub.Close
}
