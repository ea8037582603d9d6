package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/pkg/logger"
	"github.com/okian/peereval/pkg/metrics"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxBody    = 8 << 20
	defaultRatePerSec = 2
	defaultBurst      = 2

	opLoad   = "load"
	opAppend = "append"
)

// RemoteStore talks to the spreadsheet web endpoint over HTTP.
type RemoteStore struct {
	url     string
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  logger.Logger
	now     func() time.Time
	maxBody int64
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a store bound to url.
func NewRemoteStore(url string, opts ...Option) *RemoteStore {
	s := &RemoteStore{
		url:     url,
		client:  &http.Client{},
		timeout: defaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultBurst),
		tracer:  otel.Tracer("github.com/okian/peereval/repository"),
		now:     time.Now,
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("store")
	}
	return s
}

// Load fetches every member and every evaluation.
func (s *RemoteStore) Load(ctx context.Context) (model.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "RemoteStore.Load")
	defer span.End()

	start := time.Now()
	snap, err := s.load(ctx)
	s.observe(ctx, span, opLoad, start, err)
	if err != nil {
		return model.Snapshot{}, err
	}
	span.SetAttributes(
		attribute.Int("store.members", len(snap.Members)),
		attribute.Int("store.records", len(snap.Records)),
	)
	return snap, nil
}

func (s *RemoteStore) load(ctx context.Context) (model.Snapshot, error) {
	resp, err := s.do(ctx, http.MethodGet, nil)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer resp.Body.Close()

	d, err := decodePayload(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return model.Snapshot{}, err
	}
	if d.droppedMembers > 0 || d.droppedRecords > 0 {
		metrics.RecordDroppedRows("integrantes", d.droppedMembers)
		metrics.RecordDroppedRows("avaliacoes", d.droppedRecords)
		s.logger.Warn(ctx, "dropped unusable store rows",
			logger.Int("members", d.droppedMembers),
			logger.Int("records", d.droppedRecords))
	}
	if d.unscored > 0 {
		metrics.RecordDroppedRows("avaliacoes_nota", d.unscored)
		s.logger.Warn(ctx, "evaluation rows without a usable score",
			logger.Int("records", d.unscored))
	}
	return model.Snapshot{Members: d.members, Records: d.records, LoadedAt: s.now()}, nil
}

// Append posts one evaluation. Any 2xx response counts as success.
func (s *RemoteStore) Append(ctx context.Context, r model.Record) error {
	ctx, span := s.tracer.Start(ctx, "RemoteStore.Append", trace.WithAttributes(
		attribute.Int("eval.week", r.Week),
		attribute.String("eval.evaluator", r.Evaluator),
		attribute.String("eval.evaluated", r.Evaluated),
	))
	defer span.End()

	start := time.Now()
	err := s.append(ctx, r)
	s.observe(ctx, span, opAppend, start, err)
	return err
}

func (s *RemoteStore) append(ctx context.Context, r model.Record) error {
	body, err := json.Marshal(appendBody{
		Week:      r.Week,
		Evaluator: r.Evaluator,
		Evaluated: r.Evaluated,
		Score:     r.Score,
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPost, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBody))
	return nil
}

// do sends one request and returns the response when its status is 2xx.
func (s *RemoteStore) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.url, reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: %w: %s %d", ErrTransport, ErrStatus, method, resp.StatusCode)
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (s *RemoteStore) observe(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "store request failed",
			logger.String("op", op),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
	} else {
		s.logger.Debug(ctx, "store request", logger.String("op", op), logger.Duration("elapsed", elapsed))
	}
	metrics.RecordStoreRequest(op, result, float64(elapsed.Milliseconds()))
}

// cancelBody releases the request context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
