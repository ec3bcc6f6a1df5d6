package core

import "context"

// Trigger identifies the client that started a run. Both fields are empty
// for runs started from the CLI.
type Trigger struct {
	IP        string
	UserAgent string
}

type triggerKey struct{}

// WithTrigger attaches t to ctx for a later Service.Run.
func WithTrigger(ctx context.Context, t Trigger) context.Context {
	return context.WithValue(ctx, triggerKey{}, t)
}

// TriggerFrom returns the Trigger stored in ctx, or the zero value.
func TriggerFrom(ctx context.Context) Trigger {
	t, _ := ctx.Value(triggerKey{}).(Trigger)
	return t
}
