package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"cardialink-engine/internal/model"
)

var ErrNotFound = errors.New("session not found")

const DefaultTTL = 30 * time.Minute

// Store persists sessions for their TTL. Concurrent writes to one session
// are last-write-wins.
type Store interface {
	Load(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}
