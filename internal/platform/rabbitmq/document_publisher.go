package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// documentJob is the queue message. The payload carries only the document id;
// the worker loads everything else from storage, so a redelivered or stale
// message is always safe to reprocess.
type documentJob struct {
	DocumentID uint `json:"document_id"`
}

type DocumentPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewDocumentPublisher(conn *amqp.Connection, queueName string) *DocumentPublisher {
	return &DocumentPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *DocumentPublisher) PublishDocument(ctx context.Context, documentID uint) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(documentJob{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("marshal document job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish document job failed: %w", err)
	}
	return nil
}
