package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	contextKeyCompany contextKey = "auth.company_id"
	contextKeySubject contextKey = "auth.subject"
)

func WithIdentity(ctx context.Context, companyID uuid.UUID, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeyCompany, companyID)
	ctx = context.WithValue(ctx, contextKeySubject, subject)

	return ctx
}

// CompanyIDFromContext returns the authenticated company, false when the request was not authenticated.
func CompanyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyCompany).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(contextKeySubject).(string)
	return s
}
