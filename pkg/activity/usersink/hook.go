package usersink

import (
	"context"

	"github.com/goliatone/go-navigation/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink matches the go-users activity sink contract.
type Sink interface {
	Log(ctx context.Context, record usertypes.ActivityRecord) error
}

// Hook adapts activity events into go-users activity records.
type Hook struct {
	Sink Sink
}

// Notify maps the event onto an ActivityRecord and forwards it to the sink.
// Events without a verb are dropped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || event.Verb == "" {
		return nil
	}

	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
		Data:       buildData(event),
	}
	return h.Sink.Log(ctx, record)
}

func buildData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	return data
}

func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
