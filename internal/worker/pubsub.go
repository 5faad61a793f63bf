package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nimbusweather/nimbus/internal/weather"
)

// JobTypeRefresh is the only job type refresh messages carry.
const JobTypeRefresh = "refresh"

// Message attributes understood when the payload is empty, so that
// schedulers that can only set attributes may trigger refreshes.
const (
	AttrJobType    = "job_type"
	AttrLocationID = "location_id"
	AttrRefreshAll = "refresh_all"
)

const tracerName = "github.com/nimbusweather/nimbus/internal/worker"

// ErrMalformedMessage is returned for messages that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// PubSubHandler receives on-demand refresh requests from a subscription.
type PubSubHandler struct {
	client       *pubsub.Client
	subscriber   *pubsub.Subscriber
	subscription string
	job          *RefreshJob
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger

	// MaxOutstandingMessages bounds concurrent refreshes. Defaults to 10.
	MaxOutstandingMessages int
	// MaxExtension bounds lease extension for a slow refresh. Defaults to
	// 10 minutes.
	MaxExtension time.Duration
}

// RefreshMessage requests a refresh of one location, or of all of them when
// RefreshAll is set.
type RefreshMessage struct {
	JobType    string `json:"job_type"`
	LocationID string `json:"location_id,omitempty"`
	RefreshAll bool   `json:"refresh_all,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	if cfg.MaxOutstandingMessages <= 0 {
		cfg.MaxOutstandingMessages = 10
	}
	if cfg.MaxExtension <= 0 {
		cfg.MaxExtension = 10 * time.Minute
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstandingMessages
	subscriber.ReceiveSettings.MaxExtension = cfg.MaxExtension

	return &PubSubHandler{
		client:       client,
		subscriber:   subscriber,
		subscription: cfg.SubscriptionName,
		job:          cfg.RefreshJob,
		tracer:       otel.Tracer(tracerName),
		logger:       cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscription).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, h.handleMessage)
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Attributes))
	ctx, span := h.tracer.Start(ctx, h.subscription+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "gcp_pubsub"),
			attribute.String("messaging.destination.name", h.subscription),
			attribute.String("messaging.message.id", msg.ID),
		),
	)
	defer span.End()

	start := time.Now()
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Time("published_at", msg.PublishTime).
		Logger()
	if msg.DeliveryAttempt != nil {
		logger = logger.With().Int("delivery_attempt", *msg.DeliveryAttempt).Logger()
	}

	err := Process(ctx, h.job, msg.Data, msg.Attributes, logger)
	switch {
	case err == nil:
		logger.Info().Dur("duration", time.Since(start)).Msg("refresh message handled")
		msg.Ack()
	case Permanent(err):
		span.RecordError(err)
		logger.Warn().Err(err).Msg("dropping message")
		msg.Ack()
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("refresh message failed, will be redelivered")
		msg.Nack()
	}
}

// ParseRefreshMessage decodes a refresh request from a JSON payload, or from
// message attributes when the payload is empty.
func ParseRefreshMessage(data []byte, attrs map[string]string) (RefreshMessage, error) {
	var msg RefreshMessage
	if len(data) == 0 {
		msg.JobType = attrs[AttrJobType]
		msg.LocationID = attrs[AttrLocationID]
		if v, ok := attrs[AttrRefreshAll]; ok {
			all, err := strconv.ParseBool(v)
			if err != nil {
				return msg, fmt.Errorf("%w: %s attribute: %w", ErrMalformedMessage, AttrRefreshAll, err)
			}
			msg.RefreshAll = all
		}
	} else if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if msg.JobType != JobTypeRefresh {
		return msg, fmt.Errorf("%w: unknown job type %q", ErrMalformedMessage, msg.JobType)
	}
	if !msg.RefreshAll && msg.LocationID == "" {
		return msg, fmt.Errorf("%w: location_id or refresh_all is required", ErrMalformedMessage)
	}
	return msg, nil
}

// Process runs the refresh described by a message.
func Process(ctx context.Context, job *RefreshJob, data []byte, attrs map[string]string, logger zerolog.Logger) error {
	msg, err := ParseRefreshMessage(data, attrs)
	if err != nil {
		return err
	}

	if !msg.RefreshAll {
		logger.Info().Str("location_id", msg.LocationID).Msg("refreshing location")
		return job.RefreshLocation(ctx, msg.LocationID)
	}

	result, err := job.Run(ctx)
	if err != nil {
		return err
	}
	// A sweep where most locations failed is retried as a whole.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}

// Permanent reports whether err is a failure that redelivery cannot fix.
func Permanent(err error) bool {
	return errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, weather.ErrLocationNotFound) ||
		errors.Is(err, weather.ErrSuperseded) ||
		errors.Is(err, weather.ErrSourceNotFound) ||
		errors.Is(err, weather.ErrInvalidLocation)
}
