// Package mq consumes reservation commands from RabbitMQ and answers them on
// the reply_to queue of each message.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Leganyst/table-reservations/internal/transport/command"
)

const defaultHandleTimeout = 5 * time.Second

// Handler turns a raw command body into a response. It never fails: every
// problem becomes a Response with OK=false.
type Handler struct {
	dispatcher *command.Dispatcher
	timeout    time.Duration
	log        *zap.Logger
}

func NewHandler(svc command.Reservations, timeout time.Duration, log *zap.Logger) *Handler {
	if timeout <= 0 {
		timeout = defaultHandleTimeout
	}
	return &Handler{dispatcher: command.NewDispatcher(svc), timeout: timeout, log: log}
}

func (h *Handler) Handle(parent context.Context, body []byte) Response {
	var env CommandEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		h.log.Warn("invalid command envelope", zap.Error(err))
		return Response{
			OK:    false,
			Error: "invalid command format: " + err.Error(),
			Code:  command.CodeInvalidArgument,
			Type:  "Error",
		}
	}

	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	out, err := h.dispatcher.Dispatch(ctx, env.Type, env.Payload)
	if err != nil {
		code := command.Code(err)
		if code == command.CodeInternal {
			h.log.Error("command failed", zap.String("type", string(env.Type)), zap.Error(err))
		} else {
			h.log.Info("command rejected", zap.String("type", string(env.Type)), zap.String("code", string(code)), zap.Error(err))
		}
		return Response{
			OK:      false,
			Error:   err.Error(),
			Code:    code,
			Details: command.Details(err),
			Type:    "Error",
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return Response{OK: false, Error: fmt.Sprintf("encode response: %v", err), Code: command.CodeInternal, Type: "Error"}
	}
	return Response{OK: true, Type: ResponseType(env.Type), Payload: payload}
}

// Worker is the RabbitMQ consumer loop.
type Worker struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	handler *Handler
	log     *zap.Logger
}

// Dial connects to the broker and declares the durable command queue.
func Dial(url, queue string, handler *Handler, log *zap.Logger) (*Worker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	// one unacked command at a time per worker
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Worker{conn: conn, ch: ch, queue: queue, handler: handler, log: log}, nil
}

// Run consumes until ctx is done or the broker closes the delivery channel.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.ch.ConsumeWithContext(ctx,
		w.queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}
	w.log.Info("MQ worker listening", zap.String("queue", w.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	// always ack so a poison message is not redelivered forever
	defer func() {
		if err := d.Ack(false); err != nil {
			w.log.Warn("ack failed", zap.Error(err))
		}
	}()

	resp := w.handler.Handle(ctx, d.Body)
	if d.ReplyTo == "" {
		return
	}
	body, err := json.Marshal(resp)
	if err != nil {
		w.log.Error("marshal response", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err = w.ch.PublishWithContext(pubCtx,
		"",
		d.ReplyTo,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Body:          body,
		},
	)
	if err != nil {
		w.log.Warn("publish response failed", zap.String("reply_to", d.ReplyTo), zap.Error(err))
	}
}

func (w *Worker) Close() error {
	if err := w.ch.Close(); err != nil {
		w.conn.Close()
		return err
	}
	return w.conn.Close()
}
