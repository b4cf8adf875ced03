package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
)

// Producer 发布消息，清理调度器只依赖这个接口
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Client 进程内共享的 Kafka 客户端：按主题复用 writer，按消费组创建 reader
type Client struct {
	mu       sync.Mutex
	brokers  []string
	clientID string
	dialer   *kafka.Dialer
	writers  map[string]*kafka.Writer
	opened   bool
}

var (
	once      sync.Once
	singleton *Client
)

func DefaultClient() *Client {
	once.Do(func() {
		singleton = NewClient()
	})
	return singleton
}

func NewClient() *Client {
	return &Client{writers: make(map[string]*kafka.Writer)}
}

// MustOpen 读取全局配置中的 broker 列表
func (c *Client) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before Kafka client")
	}
	if err := c.Open(cfg.Kafka); err != nil {
		panic(err)
	}
}

func (c *Client) Open(cfg config.KafkaConfig) error {
	if len(cfg.BootstrapServers) == 0 {
		return errors.New("kafka bootstrap_servers is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brokers = cfg.BootstrapServers
	c.clientID = cfg.ClientID
	c.dialer = &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
		ClientID:  c.clientID,
	}
	c.opened = true
	logger.Infof("Kafka client opened brokers=%v client_id=%s", c.brokers, c.clientID)
	return nil
}

// Close 关闭所有 writer，未发送完的批次会先刷出
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, w := range c.writers {
		if err := w.Close(); err != nil {
			logger.Warnf("Kafka writer close failed topic=%s error=%v", topic, err)
		}
	}
	c.writers = make(map[string]*kafka.Writer)
	c.opened = false
}

func (c *Client) writer(topic string) (*kafka.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		return nil, errors.New("kafka client not opened")
	}
	if w, ok := c.writers[topic]; ok {
		return w, nil
	}
	// 同一个 bucket 的清理请求按 key 落到同一分区，保持顺序
	w := &kafka.Writer{
		Addr:         kafka.TCP(c.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Transport:    &kafka.Transport{ClientID: c.clientID},
	}
	c.writers[topic] = w
	return w, nil
}

func (c *Client) Produce(ctx context.Context, topic string, key, value []byte) error {
	w, err := c.writer(topic)
	if err != nil {
		return err
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Time: time.Now()}); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Reader 手动提交 offset 的消费组 reader，由调用方关闭
func (c *Client) Reader(topic, groupID string) *kafka.Reader {
	c.mu.Lock()
	brokers, dialer := c.brokers, c.dialer
	c.mu.Unlock()
	logger.Infof("Kafka reader created topic=%s group=%s brokers=%v", topic, groupID, brokers)
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		Dialer:         dialer,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}

// EnsureTopic 主题不存在时创建，已存在视为成功
func (c *Client) EnsureTopic(topic string, numPartitions, replicationFactor int) error {
	c.mu.Lock()
	brokers := c.brokers
	c.mu.Unlock()
	if len(brokers) == 0 {
		return nil
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	cc, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer cc.Close()
	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return nil
	}
	return err
}
