package sender

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "log_sender_messages_sent_total",
		Help: "The total number of messages sent, by status",
	}, []string{"status"})
	sendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "log_sender_send_duration_seconds",
		Help:    "Time taken to deliver one message to the receiver",
		Buckets: prometheus.DefBuckets,
	})
	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "log_sender_active_workers",
		Help: "Number of currently running worker goroutines",
	})
)

type EngineConfig struct {
	Workers int `yaml:"workers"`
	// Messages per second across all workers; zero or less means unlimited.
	Rate int `yaml:"rate"`
	// Total messages to send; zero means until cancelled.
	Count int `yaml:"count"`
}

type Sender interface {
	Send(ctx context.Context, message string) error
}

type Source interface {
	Next() string
}

type Stats struct {
	Sent   int64
	Failed int64
}

type Engine struct {
	source  Source
	sender  Sender
	config  EngineConfig
	limiter *rate.Limiter
	logger  *zap.Logger

	claimed atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
}

func NewEngine(source Source, sender Sender, cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Engine{
		source:  source,
		sender:  sender,
		config:  cfg,
		limiter: rate.NewLimiter(limitFor(cfg.Rate), cfg.Workers),
		logger:  logger,
	}
}

// Start blocks until ctx is cancelled or Count messages have been attempted.
func (e *Engine) Start(ctx context.Context) Stats {
	var wg sync.WaitGroup

	e.logger.Info("Sender starting",
		zap.Int("workers", e.config.Workers),
		zap.Int("rate", e.config.Rate),
		zap.Int("count", e.config.Count))

	for i := 0; i < e.config.Workers; i++ {
		wg.Add(1)
		go e.worker(ctx, &wg)
	}

	wg.Wait()

	stats := e.Stats()
	e.logger.Info("Sender stopped",
		zap.Int64("sent", stats.Sent),
		zap.Int64("failed", stats.Failed))
	return stats
}

func (e *Engine) SetRate(newRate int) {
	e.limiter.SetLimit(limitFor(newRate))
	e.logger.Info("Sender target rate updated", zap.Int("rate", newRate))
}

func (e *Engine) Stats() Stats {
	return Stats{Sent: e.sent.Load(), Failed: e.failed.Load()}
}

func (e *Engine) worker(ctx context.Context, wg *sync.WaitGroup) {
	activeWorkers.Inc()
	defer activeWorkers.Dec()
	defer wg.Done()

	for {
		if e.config.Count > 0 && e.claimed.Add(1) > int64(e.config.Count) {
			return
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return
		}

		start := time.Now()
		err := e.sender.Send(ctx, e.source.Next())
		sendDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.failed.Add(1)
			messagesSent.WithLabelValues("error").Inc()
			e.logger.Warn("Failed to send message", zap.Error(err))
			continue
		}

		e.sent.Add(1)
		messagesSent.WithLabelValues("ok").Inc()
	}
}

func limitFor(r int) rate.Limit {
	if r <= 0 {
		return rate.Inf
	}
	return rate.Limit(r)
}
