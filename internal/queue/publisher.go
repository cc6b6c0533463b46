package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher keeps one connection and channel open to the broker and
// publishes reservation events to a durable topic exchange.  A dropped
// connection is re-dialled, and a channel closed by the broker is
// reopened, on the next Publish.
type Publisher struct {
    url      string
    exchange string
    log      *zap.Logger
    dial     func(url string) (connection, error)

    mu   sync.Mutex
    conn connection
    ch   channel
}

// connection and channel are the parts of amqp091 the publisher uses.
type connection interface {
    IsClosed() bool
    Channel() (channel, error)
    Close() error
}

type channel interface {
    exchangeDeclarer
    IsClosed() bool
    PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

type exchangeDeclarer interface {
    ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

type amqpConn struct{ *amqp.Connection }

func (c amqpConn) Channel() (channel, error) {
    ch, err := c.Connection.Channel()
    if err != nil {
        return nil, err
    }
    return ch, nil
}

func dialAMQP(url string) (connection, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, err
    }
    return amqpConn{conn}, nil
}

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
    if log == nil {
        log = zap.NewNop()
    }
    p := &Publisher{url: url, exchange: exchange, log: log, dial: dialAMQP}
    if err := p.connect(); err != nil {
        return nil, err
    }
    return p, nil
}

func (p *Publisher) connect() error {
    conn, err := p.dial(p.url)
    if err != nil {
        return fmt.Errorf("dial rabbitmq: %w", err)
    }
    p.conn = conn
    if err := p.openChannel(); err != nil {
        _ = conn.Close()
        p.conn = nil
        return err
    }
    return nil
}

func (p *Publisher) openChannel() error {
    ch, err := p.conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    if err := declareTopology(ch, p.exchange); err != nil {
        _ = ch.Close()
        return err
    }
    p.ch = ch
    return nil
}

// Publish sends ev with its type as routing key.  Messages are persistent
// so they survive a broker restart.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    switch {
    case p.conn == nil || p.conn.IsClosed():
        p.log.Warn("rabbitmq: connection lost, redialling", zap.String("exchange", p.exchange))
        if err := p.connect(); err != nil {
            return err
        }
    case p.ch == nil || p.ch.IsClosed():
        p.log.Warn("rabbitmq: channel closed, reopening", zap.String("exchange", p.exchange))
        if err := p.openChannel(); err != nil {
            return err
        }
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.EventID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, pub); err != nil {
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        return p.conn.Close()
    }
    return nil
}

func declareTopology(ch exchangeDeclarer, exchange string) error {
    if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare exchange: %w", err)
    }
    return nil
}
