package store

import (
	"context"
	"log"
	"sync"
	"time"

	"bubblechat/internal/models"
	"bubblechat/internal/utils"
)

// MessageWriter batches message appends into the DB to limit transactions,
// then notifies the feed publisher once per touched room so subscribers get
// one fresh window per flush instead of one per message.
type MessageWriter struct {
	writeQ chan appendRequest
	wg     sync.WaitGroup
	stopCh chan struct{}

	writeBatchSize int
	writeFlushFreq time.Duration

	// publish is called after a flush for every room that gained messages
	publish func(roomID string)
}

type appendRequest struct {
	msg models.ChatMessage
}

// NewMessageWriter returns a ready-to-start writer.
// writeQSize: buffered channel size for incoming appends.
func NewMessageWriter(writeQSize int, publish func(roomID string)) *MessageWriter {
	return &MessageWriter{
		writeQ:         make(chan appendRequest, writeQSize),
		stopCh:         make(chan struct{}),
		writeBatchSize: 50,
		writeFlushFreq: 200 * time.Millisecond,
		publish:        publish,
	}
}

// Start launches the background writer. Call Stop() to cleanly shut down.
func (w *MessageWriter) Start(store *Store) {
	w.wg.Add(1)
	go w.writeWorker(store)
}

// Stop stops the worker and blocks until the queue is drained.
func (w *MessageWriter) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// Enqueue queues one message for insertion. Fails fast when the queue is
// full; the caller decides whether to surface that.
func (w *MessageWriter) Enqueue(msg models.ChatMessage) error {
	select {
	case w.writeQ <- appendRequest{msg: msg}:
		return nil
	default:
		return utils.QueueFull
	}
}

func (w *MessageWriter) writeWorker(store *Store) {
	defer w.wg.Done()
	batch := make([]appendRequest, 0, w.writeBatchSize)
	flushTimer := time.NewTimer(w.writeFlushFreq)
	defer flushTimer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		touched := make(map[string]struct{})
		for _, r := range batch {
			if err := store.InsertMessage(context.Background(), r.msg); err != nil {
				log.Printf("[WRITER] insert message error: %v", err)
				continue
			}
			touched[r.msg.RoomID] = struct{}{}
		}
		batch = batch[:0]
		if w.publish == nil {
			return
		}
		for roomID := range touched {
			w.publish(roomID)
		}
	}

	for {
		select {
		case <-w.stopCh:
			// drain queue before exiting
			for {
				select {
				case req := <-w.writeQ:
					batch = append(batch, req)
					if len(batch) >= w.writeBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case req := <-w.writeQ:
			batch = append(batch, req)
			if len(batch) >= w.writeBatchSize {
				flush()
				if !flushTimer.Stop() {
					<-flushTimer.C
				}
				flushTimer.Reset(w.writeFlushFreq)
			}
		case <-flushTimer.C:
			flush()
			flushTimer.Reset(w.writeFlushFreq)
		}
	}
}
