package workout

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("session not found")

// Store keeps serialized sessions by key. Implementations must be safe for
// concurrent use.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

func SessionKey(userID uint) string {
	return fmt.Sprintf("active_workout:%d", userID)
}
