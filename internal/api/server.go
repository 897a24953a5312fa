package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"log-receiver/internal/config"
	"log-receiver/internal/metrics"
	"log-receiver/internal/model"
	"log-receiver/internal/sink"
)

const (
	bodyOK          = "OK\n"
	bodyBadRequest  = "Bad request\n"
	bodyServerError = "Internal server error\n"
)

type Server struct {
	sink   sink.Sink
	logger *zap.Logger
	cfg    config.ServerConfig
	now    func() time.Time
}

func NewServer(s sink.Sink, logger *zap.Logger, cfg config.ServerConfig) *Server {
	if cfg.Path == "" {
		cfg.Path = config.DefaultPath
	}
	return &Server{
		sink:   s,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Handler exposes the single ingest route. Other methods on the route get
// 405 from the mux, other paths 404. Every response is counted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.cfg.Path, s.handleLogs)
	return countRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	if sr.status == 0 {
		sr.status = status
	}
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	return sr.ResponseWriter.Write(p)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sr, r)
		if sr.status == 0 {
			sr.status = http.StatusOK
		}
		metrics.HttpRequestsTotal.WithLabelValues(strconv.Itoa(sr.status), r.Method).Inc()
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.logger.Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Log receiver listening",
			zap.String("addr", s.cfg.ListenAddr),
			zap.String("path", s.cfg.Path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	msg, err := s.decode(w, r)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		s.logger.Debug("Rejected log message",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		s.respond(w, http.StatusBadRequest, bodyBadRequest)
		return
	}

	entry := model.NewEntry(msg, r.RemoteAddr, s.now())

	start := time.Now()
	err = s.sink.Write(r.Context(), entry)
	metrics.SinkWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Error("Failed to write log message",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		s.respond(w, http.StatusInternalServerError, bodyServerError)
		return
	}

	metrics.MessagesTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.respond(w, http.StatusOK, bodyOK)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (model.LogMessage, error) {
	// A missing Content-Type is accepted on purpose; only an explicit non-JSON type is rejected.
	if ct := r.Header.Get("Content-Type"); ct != "" && !isJSONContentType(ct) {
		return model.LogMessage{}, model.Malformed(model.ReasonUnsupportedContent, nil)
	}

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.LogMessage{}, model.Malformed(model.ReasonTooLarge, err)
		}
		return model.LogMessage{}, model.Malformed(model.ReasonUnreadable, err)
	}

	return model.DecodeLogMessage(data)
}

func (s *Server) respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}

// isJSONContentType accepts application/json and application/*+json.
func isJSONContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}
