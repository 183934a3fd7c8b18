package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"kpbu-assistant/internal/model"
)

// IngestPublisher hands documents to the ingest worker through a durable queue.
type IngestPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIngestPublisher(conn *amqp.Connection, queueName string) *IngestPublisher {
	return &IngestPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// Publish assigns a job ID when the job has none and returns it.
func (p *IngestPublisher) Publish(ctx context.Context, job model.IngestJob) (string, error) {
	if strings.TrimSpace(job.JobID) == "" {
		job.JobID = uuid.NewString()
	}
	payload, err := EncodeIngestJob(job)
	if err != nil {
		return "", err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return "", fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return "", err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    job.JobID,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return "", fmt.Errorf("publish ingest job failed: %w", err)
	}
	return job.JobID, nil
}

func EncodeIngestJob(job model.IngestJob) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal ingest job failed: %w", err)
	}
	return payload, nil
}

// DecodeIngestJob parses a queue payload; a job without content is rejected.
func DecodeIngestJob(body []byte) (model.IngestJob, error) {
	var job model.IngestJob
	if err := json.Unmarshal(body, &job); err != nil {
		return model.IngestJob{}, fmt.Errorf("unmarshal ingest job failed: %w", err)
	}
	if strings.TrimSpace(job.Content) == "" {
		return model.IngestJob{}, fmt.Errorf("ingest job %s has no content", job.JobID)
	}
	return job, nil
}
