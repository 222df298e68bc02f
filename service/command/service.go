package command

import (
	"errors"
	"net/http"

	"github.com/slack-go/slack"
)

var (
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrInvalidToken     = errors.New("invalid verification token")
)

type Service interface {
	// Verify checks the request signature and parses the slash command.
	Verify(r *http.Request) (slack.SlashCommand, error)
}
