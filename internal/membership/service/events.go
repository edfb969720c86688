package service

import (
	"context"
	"log/slog"

	"github.com/dr-roshyara/public-digit-sub005/internal/membership/models"
	"github.com/dr-roshyara/public-digit-sub005/internal/outbox"
	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
	"github.com/dr-roshyara/public-digit-sub005/pkg/requestcontext"
)

const aggregateMember = "member"

// eventEmitter writes member events to the outbox inside the write transaction
// and to the audit log once the transaction has committed.
type eventEmitter struct {
	logger *slog.Logger
	outbox EventOutbox
}

func newEventEmitter(logger *slog.Logger, o EventOutbox) *eventEmitter {
	return &eventEmitter{logger: logger, outbox: o}
}

// record appends events to the outbox. An error aborts the surrounding transaction.
func (e *eventEmitter) record(ctx context.Context, events []models.Event) error {
	if len(events) == 0 || e.outbox == nil {
		return nil
	}
	msgs := make([]outbox.Message, 0, len(events))
	for _, ev := range events {
		meta := ev.Metadata()
		msg, err := outbox.NewMessage(aggregateMember, meta.TenantID.String(), meta.MemberID.String(),
			ev.EventType(), meta.OccurredAt, ev)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode member event")
		}
		msgs = append(msgs, msg)
	}
	if err := e.outbox.Append(ctx, msgs...); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record member events")
	}
	return nil
}

func (e *eventEmitter) audit(ctx context.Context, events []models.Event) {
	for _, ev := range events {
		meta := ev.Metadata()
		e.logger.InfoContext(ctx, ev.EventType(),
			"log_type", "audit",
			"event", ev.EventType(),
			"tenant_id", meta.TenantID.String(),
			"member_id", meta.MemberID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
