package user

import (
	"context"
	"errors"
	"time"

	"github.com/webuild-community/honor/model"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid user input")
)

type Service interface {
	// Find returns the user and whether it exists.
	Find(ctx context.Context, id string) (model.User, bool, error)
	// Register creates the user with model.StartingPoints. created is false
	// when the user already existed, in which case nothing is changed.
	Register(ctx context.Context, id, username string) (user model.User, created bool, err error)
	// Accrue credits one point for a chat activity, creating the user on
	// first sight. Activities with an already credited EventID are ignored.
	Accrue(ctx context.Context, a model.Activity) (credited bool, err error)
	Leaderboard(ctx context.Context) ([]model.User, error)
	Top(ctx context.Context, limit int) ([]model.Standing, error)
	SetPoints(ctx context.Context, id string, points int64) (model.User, error)
	Redemptions(ctx context.Context, id string) ([]model.Redemption, error)
	PurgeAccrualEvents(ctx context.Context, before time.Time) (int64, error)
}
