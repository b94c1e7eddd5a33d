package notify

import (
	"context"
	"time"

	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// Pusher sends one push notification to a device token.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type pushJob struct {
	token string
	title string
	body  string
	data  map[string]string
}

// Dispatcher decouples push delivery from the request path. Callers hand
// a job to a bounded queue and return immediately; a worker drains the
// queue with its own timeout and logs failures. A push failure can never
// fail or delay call routing.
type Dispatcher struct {
	pusher  Pusher
	jobs    chan pushJob
	timeout time.Duration
	cancel  context.CancelFunc
}

// NewDispatcher starts a dispatcher with one delivery worker.
func NewDispatcher(pusher Pusher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		pusher:  pusher,
		jobs:    make(chan pushJob, 64),
		timeout: timeout,
		cancel:  cancel,
	}
	go d.run(ctx)
	return d
}

// Enqueue hands off a push notification. Returns immediately; a full
// queue drops the job with a log line.
func (d *Dispatcher) Enqueue(token, title, body string, data map[string]string) {
	if d == nil || token == "" {
		return
	}
	select {
	case d.jobs <- pushJob{token: token, title: title, body: body, data: data}:
	default:
		logger.Base().Warn("Push queue full, dropping notification", zap.String("title", title))
	}
}

// Stop shuts the worker down. Queued jobs are abandoned.
func (d *Dispatcher) Stop() {
	d.cancel()
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.jobs:
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			if err := d.pusher.Send(sendCtx, job.token, job.title, job.body, job.data); err != nil {
				logger.Base().Error("Push notification failed", zap.String("title", job.title), zap.Error(err))
			}
			cancel()
		}
	}
}
