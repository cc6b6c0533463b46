package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// ConsumerConfig names the broker topology and the file the consumer
// appends to.
type ConsumerConfig struct {
    URL      string
    Exchange string
    Queue    string
    LogPath  string
}

// Consumer binds a durable queue to every reservation.* routing key and
// appends one line per event to a log file.
type Consumer struct {
    cfg ConsumerConfig
    log *zap.Logger
    mu  sync.Mutex // serialises writes to cfg.LogPath
}

// NewConsumer returns a Consumer; nothing is dialled until Run.
func NewConsumer(cfg ConsumerConfig, log *zap.Logger) *Consumer {
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{cfg: cfg, log: log}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broken
// connections are re-dialled with exponential backoff capped at 30s.
// Messages that cannot be processed are rejected without requeue so a
// poison message cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.cfg.URL)
        if err != nil {
            c.log.Warn("reservation-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("reservation-consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("reservation-consumer: set QoS failed", zap.Error(err))
    }
    if err := declareTopology(ch, c.cfg.Exchange); err != nil {
        return err
    }
    if _, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(c.cfg.Queue, "reservation.*", c.cfg.Exchange, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }
    msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.HandleMessage(d.Body); err != nil {
                c.log.Error("reservation-consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event and appends it to the log file.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.ReservationID == 0 {
        return errors.New("event is missing type or reservation_id")
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(filepath.Dir(c.cfg.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single human readable log line.
func FormatLine(ev ReservationEvent) string {
    return fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%d | court_id=%d | date=%s | window=%s-%s | status=%s | event_id=%s\n",
        ev.OccurredAt, ev.Type, ev.ReservationID, ev.UserID, ev.CourtID, ev.Date, ev.StartTime, ev.EndTime, ev.Status, ev.EventID)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
