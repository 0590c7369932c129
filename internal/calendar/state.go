package calendar

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	PlatformWeb    = "web"
	PlatformMobile = "mobile"
)

// State is the context carried through the OAuth provider's state parameter.
// Wire format: "<provider>:<platform>:<userId>:<uuid>". The token is opaque to
// the provider and carries no secret; it is trusted only to the extent that
// the provider echoes it back unmodified. Whether it should additionally be
// signed is tracked as an open question in DESIGN.md.
type State struct {
	Provider string
	Platform string
	UserID   string
	StateID  string
}

// FormatState encodes a state token with a random unique suffix.
func FormatState(provider, platform string, userID int64) string {
	return fmt.Sprintf("%s:%s:%d:%s", provider, platform, userID, uuid.NewString())
}

// ParseState decodes a state token. It returns nil when the token does not
// split into four non-empty components or names an unknown platform. Extra
// colons inside the trailing suffix are tolerated: the remainder is joined
// rather than split strictly.
func ParseState(s string) *State {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 {
		return nil
	}
	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	if parts[1] != PlatformWeb && parts[1] != PlatformMobile {
		return nil
	}
	return &State{
		Provider: parts[0],
		Platform: parts[1],
		UserID:   parts[2],
		StateID:  parts[3],
	}
}
