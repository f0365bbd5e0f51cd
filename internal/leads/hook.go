package leads

import "context"

// Hook runs after a lead row has been committed. Implementations are
// best-effort: the handler observes the returned error only for logging and
// the HTTP outcome is already decided when hooks fire.
type Hook interface {
	LeadCreated(ctx context.Context, lead *Lead, req *CreateLeadRequest) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, lead *Lead, req *CreateLeadRequest) error

func (f HookFunc) LeadCreated(ctx context.Context, lead *Lead, req *CreateLeadRequest) error {
	return f(ctx, lead, req)
}
