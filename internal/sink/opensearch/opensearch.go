package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"log-receiver/internal/model"
)

const DefaultIndexPrefix = "remote-logs"

var (
	indexingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "log_receiver_opensearch_indexing_errors_total",
		Help: "The total number of failed indexing attempts",
	})
	indexingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "log_receiver_opensearch_indexing_duration_seconds",
		Help:    "The duration of indexing requests to OpenSearch",
		Buckets: prometheus.DefBuckets,
	})
)

type Config struct {
	Addresses          []string `yaml:"addresses"`
	IndexPrefix        string   `yaml:"index_prefix"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
}

// Sink indexes each accepted entry into a daily index.
type Sink struct {
	transport   opensearchapi.Transport
	indexPrefix string
}

func NewSink(cfg Config) (*Sink, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: cfg.Addresses,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return newSink(client, cfg.IndexPrefix), nil
}

func newSink(transport opensearchapi.Transport, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultIndexPrefix
	}
	return &Sink{transport: transport, indexPrefix: prefix}
}

func (s *Sink) Write(ctx context.Context, entry model.Entry) error {
	timer := prometheus.NewTimer(indexingDuration)
	defer timer.ObserveDuration()

	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: IndexName(s.indexPrefix, entry.ReceivedAt),
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.transport)
	if err != nil {
		indexingErrors.Inc()
		return fmt.Errorf("failed to execute index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		indexingErrors.Inc()
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

// IndexName returns "<prefix>-YYYY.MM.DD" for the UTC day of t.
func IndexName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, t.UTC().Format("2006.01.02"))
}
