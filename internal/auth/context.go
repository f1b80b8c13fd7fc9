package auth

import "context"

type characterIDKey struct{}

// SetCharacterID attaches the authenticated hunter's character id to the
// request context. Done by the auth middleware after token check.
func SetCharacterID(ctx context.Context, characterID string) context.Context {
	return context.WithValue(ctx, characterIDKey{}, characterID)
}

func CharacterIDFromContext(ctx context.Context) (string, bool) {
	characterID, ok := ctx.Value(characterIDKey{}).(string)
	return characterID, ok
}
