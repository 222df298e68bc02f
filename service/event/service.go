package event

import (
	"context"
	"net/http"

	"github.com/webuild-community/honor/bot"
)

// Service is a Slack Events API source.
type Service interface {
	// Authenticate checks the slack request signature.
	Authenticate(header http.Header, body []byte) error
	Verify(header http.Header, body []byte) (interface{}, error)
	// Username resolves a display name for a slack user id.
	Username(ctx context.Context, userID string) string
	// Replier answers in the thread of the message identified by channel and ts.
	Replier(channel, ts string) bot.Replier
}
