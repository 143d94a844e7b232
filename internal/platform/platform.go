package platform

import "context"

// Platform abstracts a social network behind one capability set. Callers
// hold this interface and select a concrete provider by name; no call site
// depends on a provider type.
//
// Adapters keep no state across calls beyond read-only configuration, so a
// single instance is safe for concurrent use across tokens and accounts.
// Cancellation and deadlines flow through the context on every
// network-touching method; AuthURL is pure URL construction and can only
// fail on missing credentials.
type Platform interface {
	// Name returns the provider identifier (facebook, instagram, ...).
	Name() string

	// AuthURL builds the provider's authorize URL with an anti-forgery
	// state that embeds the initiating user's identity.
	AuthURL(userID, redirectURI string) (OAuthURL, error)

	// HandleCallback exchanges an authorization code for a short-lived
	// token and immediately upgrades it to a long-lived one.
	HandleCallback(ctx context.Context, code, redirectURI string) (TokenPair, error)

	// RefreshToken extends the validity of an existing access token.
	// Providers in this family have no separate refresh credential; the
	// long-lived exchange is re-run with the current token as input.
	RefreshToken(ctx context.Context, accessToken string) (TokenPair, error)

	// Account resolves the identity to operate as: the first manageable
	// page or business entity (with its page-scoped token), falling back
	// to the personal profile where the provider supports one.
	Account(ctx context.Context, accessToken string) (Account, error)

	// Publish translates the canonical content unit into the provider's
	// publish protocol and returns the created post's identity.
	Publish(ctx context.Context, accessToken string, content Content) (PublishResult, error)

	// PostMetrics collects best-effort metrics for a published post.
	// Sub-query failures degrade to zero and are recorded as diagnostics.
	PostMetrics(ctx context.Context, accessToken, postID string) (PostMetrics, error)

	// AccountMetrics collects best-effort account-level metrics.
	AccountMetrics(ctx context.Context, accessToken, accountID string) (AccountMetrics, error)
}
