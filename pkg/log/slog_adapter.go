package log

import (
	"context"
	"log/slog"

	"github.com/ETCLabs/rdmnet-go/pkg/rdm"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.Scope != "" {
		attrs = append(attrs, slog.String("scope", event.Scope))
	}
	if event.PeerUID != "" {
		attrs = append(attrs, slog.String("peer_uid", event.PeerUID))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs, slog.String("msg", event.Message.Name))
		if event.Message.DestUID != "" {
			attrs = append(attrs,
				slog.String("src_uid", event.Message.SourceUID),
				slog.String("dest_uid", event.Message.DestUID),
				slog.Uint64("seqnum", uint64(event.Message.Seqnum)),
			)
		}
		if event.Message.ParamID != nil {
			attrs = append(attrs, slog.String("pid", rdm.PIDName(*event.Message.ParamID)))
		}
		if event.Message.ResponseType != "" {
			attrs = append(attrs, slog.String("resp_type", event.Message.ResponseType))
		}
		if event.Message.Code != nil {
			attrs = append(attrs, slog.Uint64("code", uint64(*event.Message.Code)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Heartbeat != nil:
		attrs = append(attrs, slog.String("heartbeat", event.Heartbeat.Type.String()))
		if event.Heartbeat.Silence > 0 {
			attrs = append(attrs, slog.Duration("silence", event.Heartbeat.Silence))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
