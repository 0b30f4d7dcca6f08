package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ordersExchange = "mes.orders_topic"

// Publisher 生产事件的消息队列发布端
// 以 order.<status> 为路由键向topic交换机发布持久化JSON事件，
// 供报表、大屏等下游消费，发布失败不影响生产操作本身
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

func DialPublisher(host string, port int, user, pass, vhost string, logger *zap.Logger) (*Publisher, error) {
	if vhost == "" {
		vhost = "/"
	}
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/%s", user, pass, host, port, vhost)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish 发布订单事件，路由键 order.<status>
func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) {
	if p == nil || p.ch == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	key := "order." + ev.Status
	err = p.ch.PublishWithContext(ctx, ordersExchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("订单事件发布失败", zap.String("routing_key", key), zap.Error(err))
	}
}
