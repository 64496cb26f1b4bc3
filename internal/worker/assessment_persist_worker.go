package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
	"path2prevention/internal/repository"
)

// AssessmentSink persists a decoded assessment result.
type AssessmentSink interface {
	Create(ctx context.Context, result *model.AssessmentResult) error
}

type AssessmentPersistWorker struct {
	conn      *amqp.Connection
	sink      AssessmentSink
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAssessmentPersistWorker(conn *amqp.Connection, sink AssessmentSink, queueName string, log *logger.Logger) *AssessmentPersistWorker {
	return &AssessmentPersistWorker{
		conn:      conn,
		sink:      sink,
		queueName: queueName,
		log:       log,
	}
}

func (w *AssessmentPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(workerCtx, d.Body); err != nil {
					requeue := Requeue(err)
					w.log.Warn("assessment worker rejected delivery", "queue", w.queueName, "requeue", requeue, "error", err)
					_ = d.Nack(false, requeue)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Handle decodes one delivery body and writes it through the sink.
func (w *AssessmentPersistWorker) Handle(ctx context.Context, body []byte) error {
	var result model.AssessmentResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode assessment failed: %w", err)
	}
	result.ID = 0
	if err := w.sink.Create(ctx, &result); err != nil {
		return fmt.Errorf("persist assessment failed: %w", err)
	}
	return nil
}

// Requeue reports whether a failed delivery should go back on the queue.
// Only a database that cannot be reached is retried; undecodable payloads
// and rejected rows are dropped.
func Requeue(err error) bool {
	return repository.IsUnavailable(err)
}

func (w *AssessmentPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
