package events

import "context"

type submissionIDKey struct{}

// ContextWithSubmissionID returns a new context carrying the submission ID.
func ContextWithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey{}, id)
}

// SubmissionIDFromContext extracts the submission ID from the context, or "" if absent.
func SubmissionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(submissionIDKey{}).(string); ok {
		return id
	}
	return ""
}
