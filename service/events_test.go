package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BerniceZTT/telecaller_crm/models"
)

func TestEventBus_FailingSinkDoesNotBlockOthers(t *testing.T) {
	recorder := &recordingSink{}
	failing := EventSinkFunc{
		SinkName: "failing",
		Fn: func(context.Context, models.LeadEvent) error {
			return errors.New("broker unavailable")
		},
	}
	bus := NewEventBus(failing, recorder)

	bus.Publish(context.Background(), models.LeadEvent{Type: models.LeadEventCREATED, LeadID: "l1"})

	assert.Equal(t, []models.LeadEventType{models.LeadEventCREATED}, recorder.Types())
	assert.False(t, recorder.events[0].At.IsZero())
}

func TestEventBus_DeliversAfterCallerCancels(t *testing.T) {
	var deliveredErr error
	bus := NewEventBus(EventSinkFunc{
		SinkName: "ctx",
		Fn: func(ctx context.Context, _ models.LeadEvent) error {
			deliveredErr = ctx.Err()
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, models.LeadEvent{Type: models.LeadEventDELETED})

	assert.NoError(t, deliveredErr)
}

func TestEventBus_NilSafe(t *testing.T) {
	var bus *EventBus
	assert.NotPanics(t, func() {
		bus.Add(&recordingSink{})
		bus.Publish(context.Background(), models.LeadEvent{})
	})
}
