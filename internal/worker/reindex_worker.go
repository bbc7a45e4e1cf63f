package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docubase/internal/app"
	"docubase/internal/model"
)

// ReindexWorker consumes re-index tasks one at a time and replays the
// indexing pipeline for each document. A failed task is dropped after
// logging; the document keeps its previous chunk set, so a retry is
// just another Reindex call.
type ReindexWorker struct {
	conn      *amqp.Connection
	service   *app.KnowledgeService
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReindexWorker(conn *amqp.Connection, service *app.KnowledgeService, queueName string) *ReindexWorker {
	return &ReindexWorker{
		conn:      conn,
		service:   service,
		queueName: queueName,
	}
}

func (w *ReindexWorker) Start(ctx context.Context) error {
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

	// One unacked task at a time: indexing runs stay serial even if the
	// broker has a backlog.
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
		return fmt.Errorf("consume reindex queue failed: %w", err)
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

				var task model.ReindexTask
				if err := json.Unmarshal(d.Body, &task); err != nil {
					log.Printf("worker decode reindex task failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.service.ReindexNow(workerCtx, task.DocumentID); err != nil {
					log.Printf("worker reindex document %d (task %s) failed: %v", task.DocumentID, task.TaskID, err)
					_ = d.Nack(false, false)
					continue
				}

				log.Printf("worker reindexed document %d (task %s)", task.DocumentID, task.TaskID)
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ReindexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
