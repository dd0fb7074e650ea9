package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ReevaluationJob asks for one applicant's signals and risk to be recomputed.
type ReevaluationJob struct {
	ApplicantID string
	RequestedBy string
}

// Reevaluator is the service-side contract the workers call.
type Reevaluator interface {
	Reevaluate(ctx context.Context, applicantID string) error
}

// Dispatcher routes re-evaluation jobs to a fixed set of workers using
// consistent hashing on the applicant ID, guaranteeing that jobs for the
// same applicant are processed in order and never concurrently.
type Dispatcher struct {
	workers []chan ReevaluationJob
	service Reevaluator
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Reevaluator, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ReevaluationJob, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ReevaluationJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its applicant.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ReevaluationJob) {
	i := d.shardIndex(job.ApplicantID)
	d.workers[i] <- job
	metrics.ReevalQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// shardIndex maps an applicant ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(applicantID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(applicantID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ReevaluationJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.ReevalQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.service.Reevaluate(ctx, job.ApplicantID); err != nil {
				d.log.Error().Err(err).
					Str("applicant_id", job.ApplicantID).
					Str("requested_by", job.RequestedBy).
					Int("worker_id", id).
					Msg("re-evaluation failed")
			}
		}
	}
}
