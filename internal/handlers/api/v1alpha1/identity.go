package v1alpha1

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

// UserIDMetadataKey carries the authenticated caller on every call
const UserIDMetadataKey = "x-user-id"

// UserIDFromContext reads the caller from incoming metadata
func UserIDFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.Unauthenticated("missing caller identity")
	}

	for _, v := range md.Get(UserIDMetadataKey) {
		if id := strings.TrimSpace(v); id != "" {
			return id, nil
		}
	}

	return "", errors.Unauthenticated("missing caller identity")
}

// WithUserID attaches the caller to an outgoing client context
func WithUserID(ctx context.Context, userID string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, UserIDMetadataKey, userID)
}
