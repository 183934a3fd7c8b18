package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"kpbu-assistant/internal/app"
	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/platform/rabbitmq"
)

type Ingester interface {
	Ingest(ctx context.Context, input app.IngestInput) (*app.IngestResult, error)
}

// IngestWorker consumes ingest jobs one at a time. Jobs that fail to decode or
// ingest are nacked without requeue; jobs cut short by Close are requeued.
type IngestWorker struct {
	conn      *amqp.Connection
	ingester  Ingester
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, ingester Ingester, queueName string) *IngestWorker {
	return &IngestWorker{
		conn:      conn,
		ingester:  ingester,
		queueName: queueName,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
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
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	// Embedding a document is slow; take one job at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
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

	log := logging.Component("ingest_worker")
	log.Info().Str("queue", w.queueName).Msg("ingest worker started")

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
					log.Warn().Msg("delivery channel closed")
					return
				}
				w.process(workerCtx, d)
			}
		}
	}()

	return nil
}

// process runs one delivery and settles it.
func (w *IngestWorker) process(ctx context.Context, d amqp.Delivery) {
	err := w.handle(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	log := logging.Component("ingest_worker")
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("message_id", d.MessageId).Msg("ingest job interrupted, requeueing")
		_ = d.Nack(false, true)
		return
	}
	log.Error().Err(err).Str("message_id", d.MessageId).Msg("ingest job failed")
	_ = d.Nack(false, false)
}

func (w *IngestWorker) handle(ctx context.Context, body []byte) error {
	job, err := rabbitmq.DecodeIngestJob(body)
	if err != nil {
		return err
	}
	res, err := w.ingester.Ingest(ctx, app.IngestInput{
		ProjectID:    job.ProjectID,
		DocumentName: job.DocumentName,
		FileType:     job.FileType,
		Content:      job.Content,
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}
	logging.Component("ingest_worker").Info().
		Str("job_id", job.JobID).
		Uint("document_id", res.Document.ID).
		Int("chunks", res.ChunkCount).
		Msg("ingest job done")
	return nil
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
