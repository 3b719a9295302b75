package alert

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Alerter receives events worth a human's attention: placed and rejected
// orders, empty market feeds. A nil Alerter is a no-op everywhere.
type Alerter interface {
	Important(event string, fields map[string]string)
}

const defaultQueueSize = 128

// Manager delivers important events to a Notifier asynchronously. Delivery
// is best effort: when the queue is full the event is dropped and counted
// rather than blocking the trading path.
type Manager struct {
	exchange string
	notifier Notifier
	queue    chan alertEvent
	stop     chan struct{}
	done     chan struct{}
	dropped  uint64
	mu       sync.Mutex
	closed   bool
}

type alertEvent struct {
	event  string
	fields map[string]string
}

func NewManager(exchange string, notifier Notifier) *Manager {
	if notifier == nil {
		return nil
	}
	m := &Manager{
		exchange: exchange,
		notifier: notifier,
		queue:    make(chan alertEvent, defaultQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Manager) Important(event string, fields map[string]string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	select {
	case m.queue <- alertEvent{event: event, fields: cloneFields(fields)}:
	default:
		dropped := atomic.AddUint64(&m.dropped, 1)
		logrus.WithFields(logrus.Fields{
			"event":         event,
			"dropped_total": dropped,
		}).Warn("alert queue full, event dropped")
	}
}

// Close drains the queue and stops the delivery loop.
func (m *Manager) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stop)
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) loop() {
	defer close(m.done)
	for {
		select {
		case ev := <-m.queue:
			m.send(ev)
		case <-m.stop:
			for {
				select {
				case ev := <-m.queue:
					m.send(ev)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) send(ev alertEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := m.notifier.Notify(ctx, m.buildMessage(ev.event, ev.fields)); err != nil {
		logrus.WithError(err).WithField("event", ev.event).Error("alert delivery failed")
	}
}

func (m *Manager) buildMessage(event string, fields map[string]string) string {
	lines := []string{
		"[mosquito] important",
		"time: " + time.Now().UTC().Format(time.RFC3339),
		"exchange: " + m.exchange,
		"event: " + event,
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+": "+fields[k])
	}
	return strings.Join(lines, "\n")
}

func cloneFields(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
