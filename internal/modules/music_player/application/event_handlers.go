package application

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/sglre6355/streamify/internal/modules/music_player/application/ports"
	"github.com/sglre6355/streamify/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/streamify/internal/modules/music_player/domain"
)

// Compile-time check that TransportService can be driven by sink events.
var _ PlaybackController = (*usecases.TransportService)(nil)

// PlaybackController is the part of the transport that reacts to media sink events.
type PlaybackController interface {
	OnTrackEnded(ctx context.Context) error
	ReconcilePlaybackFailure(reason string)
	UpdateProgress(position, duration time.Duration)
}

// PlaybackEventHandler handles events reported by the media sink.
// It subscribes to TrackEnded, PlaybackFailed and ProgressUpdated events and feeds them
// back into the transport.
type PlaybackEventHandler struct {
	transport  PlaybackController
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	transport PlaybackController,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		transport:  transport,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() error {
	err := h.subscriber.Subscribe(
		reflect.TypeOf((*domain.TrackEndedEvent)(nil)).Elem(),
		func(ctx context.Context, e domain.Event) {
			h.handleTrackEnded(ctx, e.(domain.TrackEndedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeOf((*domain.PlaybackFailedEvent)(nil)).Elem(),
		func(_ context.Context, e domain.Event) {
			h.handlePlaybackFailed(e.(domain.PlaybackFailedEvent))
		},
	)
	if err != nil {
		return err
	}

	err = h.subscriber.Subscribe(
		reflect.TypeOf((*domain.ProgressUpdatedEvent)(nil)).Elem(),
		func(_ context.Context, e domain.Event) {
			event := e.(domain.ProgressUpdatedEvent)
			h.transport.UpdateProgress(event.Position, event.Duration)
		},
	)
	if err != nil {
		return err
	}

	slog.Debug("playback event handlers properly registered")

	return nil
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	// Only a natural end moves on to the next result
	if !event.Reason.ShouldAdvance() {
		slog.Debug("track ended without advancing", "reason", event.Reason)
		return
	}

	slog.Debug("track ended, advancing to next result", "event", event)

	err := h.transport.OnTrackEnded(ctx)
	if err != nil && !errors.Is(err, usecases.ErrNoTrackSelected) {
		slog.Error(
			"failed to advance after track ended",
			"event", event,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) handlePlaybackFailed(event domain.PlaybackFailedEvent) {
	slog.Debug("media sink reported playback failure", "event", event)
	h.transport.ReconcilePlaybackFailure(event.Reason)
}
