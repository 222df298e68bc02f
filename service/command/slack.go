package command

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type slackSvc struct {
	logger            *zap.Logger
	signingSecret     string
	verificationToken string
}

// NewSlackService --
// verificationToken is the legacy per-app token. When set it is checked in
// addition to the signature, never instead of it.
func NewSlackService(logger *zap.Logger, signingSecret, verificationToken string) Service {
	return &slackSvc{
		logger:            logger,
		signingSecret:     signingSecret,
		verificationToken: verificationToken,
	}
}

func (s *slackSvc) Verify(r *http.Request) (slack.SlashCommand, error) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return slack.SlashCommand{}, err
	}
	r.Body = ioutil.NopCloser(bytes.NewReader(body))

	if s.signingSecret == "" {
		return slack.SlashCommand{}, fmt.Errorf("%w: no signing secret configured", ErrInvalidSignature)
	}
	sv, err := slack.NewSecretsVerifier(r.Header, s.signingSecret)
	if err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if _, err := sv.Write(body); err != nil {
		return slack.SlashCommand{}, err
	}
	if err := sv.Ensure(); err != nil {
		return slack.SlashCommand{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		return cmd, err
	}

	if s.verificationToken != "" && !cmd.ValidateToken(s.verificationToken) {
		s.logger.Warn("invalid slash command token", zap.String("team_id", cmd.TeamID))
		return cmd, ErrInvalidToken
	}

	return cmd, nil
}
