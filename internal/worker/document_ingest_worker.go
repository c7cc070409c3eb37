package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"fundlens/internal/app"
)

type documentJob struct {
	DocumentID uint `json:"document_id"`
}

// DocumentIngestWorker consumes document ingestion jobs one at a time. The
// single consumer with a prefetch of one serializes fund find-or-create, so
// two documents naming the same new fund never race.
type DocumentIngestWorker struct {
	conn      *amqp.Connection
	ingest    *app.IngestService
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDocumentIngestWorker(conn *amqp.Connection, ingest *app.IngestService, queueName string) *DocumentIngestWorker {
	return &DocumentIngestWorker{
		conn:      conn,
		ingest:    ingest,
		queueName: queueName,
	}
}

func (w *DocumentIngestWorker) Start(ctx context.Context) error {
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

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
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

				var job documentJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					log.Printf("worker decode document job failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				// Failures are recorded on the document row by Process, so
				// the job is acked either way. Requeueing would spin on
				// documents that can never parse.
				if err := w.ingest.Process(workerCtx, job.DocumentID); err != nil {
					log.Printf("worker process document %d failed: %v", job.DocumentID, err)
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *DocumentIngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
