package storage

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Basic-PDF-Manager/Document-Service/internal/models"
)

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
	maxFailureLog      = 32
)

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	}
	return "unknown"
}

type job struct {
	kind opKind
	doc  models.Document
	id   string
	set  []models.Document
}

// WriteFailure is one entry in the bounded log of persistence writes that
// were retried and still failed.
type WriteFailure struct {
	Op         string    `json:"op"`
	DocumentID string    `json:"documentId"`
	Error      string    `json:"error"`
	At         time.Time `json:"at"`
}

// Reconciler propagates registry mutations to a durable store through a
// single worker goroutine. Jobs carry the document set as it was when the
// mutation happened, so snapshot rewrites are applied in mutation order
// even when handlers run concurrently.
//
// Persistence is best effort: a failed write is retried with linear
// backoff, then logged and dropped. The registry keeps serving from memory
// either way.
type Reconciler struct {
	store       Store
	queue       chan job
	done        chan struct{}
	maxAttempts int
	backoff     time.Duration

	mu       sync.Mutex
	closed   bool
	failures []WriteFailure
}

func NewReconciler(store Store) *Reconciler {
	r := &Reconciler{
		store:       store,
		queue:       make(chan job, defaultQueueSize),
		done:        make(chan struct{}),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	go r.run()
	return r
}

// DocumentCreated implements registry.Recorder.
func (r *Reconciler) DocumentCreated(doc models.Document, set []models.Document) {
	r.enqueue(job{kind: opCreate, doc: doc, id: doc.ID, set: set})
}

// DocumentUpdated implements registry.Recorder.
func (r *Reconciler) DocumentUpdated(doc models.Document, set []models.Document) {
	r.enqueue(job{kind: opUpdate, doc: doc, id: doc.ID, set: set})
}

// DocumentDeleted implements registry.Recorder.
func (r *Reconciler) DocumentDeleted(id string, set []models.Document) {
	r.enqueue(job{kind: opDelete, id: id, set: set})
}

// enqueue never blocks the request path. A full queue counts as a failed
// write rather than backpressure on the caller. The mutex is held across
// the send so Shutdown cannot close the channel mid-enqueue.
func (r *Reconciler) enqueue(j job) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.recordFailure(j, fmt.Errorf("reconciler is shut down"))
		return
	}
	defer r.mu.Unlock()

	select {
	case r.queue <- j:
	default:
		r.recordFailureLocked(j, fmt.Errorf("write queue full (%d pending)", cap(r.queue)))
	}
}

func (r *Reconciler) run() {
	for j := range r.queue {
		r.apply(j)
	}
	close(r.done)
}

func (r *Reconciler) apply(j job) {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err = r.dispatch(j); err == nil {
			return
		}
		if attempt < r.maxAttempts {
			time.Sleep(time.Duration(attempt) * r.backoff)
		}
	}
	log.Printf("Warning: persistence %s for %q failed after %d attempts: %v", j.kind, j.id, r.maxAttempts, err)
	r.recordFailure(j, err)
}

func (r *Reconciler) dispatch(j job) error {
	ctx := context.Background()
	switch j.kind {
	case opCreate:
		return r.store.CreateDocument(ctx, j.doc, j.set)
	case opUpdate:
		return r.store.UpdateDocument(ctx, j.doc, j.set)
	case opDelete:
		return r.store.DeleteDocument(ctx, j.id, j.set)
	}
	return fmt.Errorf("unknown op %d", j.kind)
}

func (r *Reconciler) recordFailure(j job, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordFailureLocked(j, err)
}

func (r *Reconciler) recordFailureLocked(j job, err error) {
	r.failures = append(r.failures, WriteFailure{
		Op:         j.kind.String(),
		DocumentID: j.id,
		Error:      err.Error(),
		At:         time.Now().UTC(),
	})
	if len(r.failures) > maxFailureLog {
		r.failures = r.failures[len(r.failures)-maxFailureLog:]
	}
}

// Failures returns the bounded log of writes that were never persisted.
func (r *Reconciler) Failures() []WriteFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]WriteFailure, len(r.failures))
	copy(out, r.failures)
	return out
}

// Shutdown drains the queue, writes a final snapshot of the given set and
// closes the store. Idempotent writes make the final flush safe even when
// every mutation already hit the store.
func (r *Reconciler) Shutdown(ctx context.Context, set []models.Document) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	select {
	case <-r.done:
	case <-ctx.Done():
		log.Printf("Warning: shutdown drain interrupted: %v", ctx.Err())
	}

	if err := r.store.Flush(ctx, set); err != nil {
		log.Printf("Warning: final flush failed: %v", err)
	}
	return r.store.Close()
}
