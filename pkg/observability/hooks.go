package observability

import (
	"log/slog"

	"github.com/aretw0/weft/pkg/domain"
)

// LogHooks returns lifecycle hooks that log graph events.
// Value changes are logged at debug level, rejections and cycle guards at warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	node := func(e *domain.NodeEvent) {
		logger.Info(string(e.Type),
			"node_id", e.Node.ID(),
			"node", e.Node.Name(),
		)
	}
	conn := func(e *domain.ConnectionEvent) {
		logger.Info(string(e.Type),
			"from", label(e.From),
			"to", label(e.To),
		)
	}
	return domain.LifecycleHooks{
		OnNodeAdded:   node,
		OnNodeRemoved: node,
		OnConnect:     conn,
		OnDisconnect:  conn,
		OnReject: func(e *domain.ConnectionEvent) {
			logger.Warn(string(e.Type),
				"from", label(e.From),
				"to", label(e.To),
				"reason", e.Reason,
			)
		},
		OnValueChanged: func(e *domain.ValueEvent) {
			logger.Debug(string(domain.EventValueChanged),
				"property", e.Property.String(),
				"old", e.OldValue,
				"new", e.NewValue,
			)
		},
		OnCycleGuard: func(e *domain.CycleEvent) {
			logger.Warn(string(domain.EventCycleGuard),
				"property", e.Property.String(),
				"depth", e.Depth,
			)
		},
	}
}

func label(p *domain.Property) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}
