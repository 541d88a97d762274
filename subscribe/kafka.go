package subscribe

/**
  *  @author tryao
  *  @date 2022/09/08 14:30
**/

import (
	"context"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/wushian/fireasy2/base/log"
)

type kafkaHandler struct {
	fn func([]byte)
}

// KafkaManager 基于kafka的发布订阅，subject即topic
// 单个消费组内一条消息只会投递一次，扩展多实例时注意组名
type KafkaManager struct {
	client *kgo.Client
	cancel context.CancelFunc

	mu       sync.RWMutex
	closed   bool
	handlers map[string][]*kafkaHandler
}

func NewKafkaManager(brokers []string, group string, opts ...kgo.Opt) (*KafkaManager, error) {
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
	}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &KafkaManager{
		client:   client,
		cancel:   cancel,
		handlers: make(map[string][]*kafkaHandler),
	}
	go m.pollLoop(ctx)
	return m, nil
}

func (m *KafkaManager) Publish(ctx context.Context, subject string, data []byte) error {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return m.client.ProduceSync(ctx, &kgo.Record{Topic: subject, Value: data}).FirstErr()
}

func (m *KafkaManager) Subscribe(subject string, fn func(data []byte)) (func(), error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	first := len(m.handlers[subject]) == 0
	h := &kafkaHandler{fn: fn}
	m.handlers[subject] = append(m.handlers[subject], h)
	m.mu.Unlock()

	if first {
		m.client.AddConsumeTopics(subject)
	}
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		hs := m.handlers[subject]
		for i, cur := range hs {
			if cur == h {
				m.handlers[subject] = append(hs[:i], hs[i+1:]...)
				break
			}
		}
		//kgo不支持撤掉单个topic，留给rebalance处理
	}
	return cancel, nil
}

func (m *KafkaManager) pollLoop(ctx context.Context) {
	for {
		fetches := m.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error("kafka fetch %s/%d: %v", topic, partition, err)
		})
		fetches.EachRecord(func(r *kgo.Record) {
			m.mu.RLock()
			hs := append([]*kafkaHandler(nil), m.handlers[r.Topic]...)
			m.mu.RUnlock()
			for _, h := range hs {
				safeHandle(r.Topic, h.fn, r.Value)
			}
		})
	}
}

func (m *KafkaManager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.handlers = make(map[string][]*kafkaHandler)
	m.mu.Unlock()
	m.cancel()
	m.client.Close()
	return nil
}
