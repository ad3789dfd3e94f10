package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// CredentialsFromMetadata merges an "authorization: Bearer <token>" header of
// the incoming call into the logon credentials. Explicit credentials win.
func CredentialsFromMetadata(ctx context.Context, creds map[string]string) map[string]string {
	merged := make(map[string]string, len(creds)+1)
	for k, v := range creds {
		merged[k] = v
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return merged
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return merged
	}
	if _, set := merged[CredentialToken]; !set {
		merged[CredentialToken] = strings.TrimPrefix(values[0], "Bearer ")
	}
	return merged
}
