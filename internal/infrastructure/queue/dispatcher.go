package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/siteworks/records-api/internal/api/metrics"
	"github.com/siteworks/records-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes bundle jobs to a fixed set of workers using consistent
// hashing on the record id, guaranteeing per-record job ordering.
type Dispatcher struct {
	workers []chan ports.BundleJob
	service ports.BundleService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.BundleService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.BundleJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.BundleJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its record id.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.BundleJob) {
	d.workers[d.shardIndex(job.RecordID)] <- job
}

// shardIndex maps a record id deterministically to a worker index.
func (d *Dispatcher) shardIndex(recordID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recordID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.BundleJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, job); err != nil {
				metrics.BundleJobsTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("record_id", job.RecordID).
					Int("worker_id", id).
					Msg("bundle job failed")
				continue
			}
			metrics.BundleJobsTotal.WithLabelValues("ok").Inc()
		}
	}
}
