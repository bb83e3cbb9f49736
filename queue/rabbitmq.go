package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// DefaultExchange 线索事件交换机
const DefaultExchange = "crm.leads"

// Publisher 将线索事件发布到RabbitMQ topic交换机，路由键为事件类型
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// NewPublisher 连接RabbitMQ并声明交换机
func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("打开RabbitMQ通道失败: %w", err)
	}

	if err := setupTopology(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	utils.Logger.Info().Str("exchange", exchange).Msg("已连接到RabbitMQ")
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func setupTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明交换机失败: %w", err)
	}
	return nil
}

// Name 接收方名称
func (p *Publisher) Name() string {
	return "rabbitmq"
}

// Publish 发布事件
func (p *Publisher) Publish(ctx context.Context, event models.LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化线索事件失败: %w", err)
	}

	// amqp通道不支持并发发布
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		string(event.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
			Type:         string(event.Type),
		},
	)
	if err != nil {
		return fmt.Errorf("发布线索事件失败: %w", err)
	}
	return nil
}

// Close 关闭连接
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.ch.Close(); err != nil {
		utils.Logger.Warn().Err(err).Msg("关闭RabbitMQ通道失败")
	}
	if err := p.conn.Close(); err != nil {
		utils.Logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
	}
}
