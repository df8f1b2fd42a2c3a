// Package lock serializes work on a key across instances, e.g. topic
// provisioning for one user.
package lock

import (
	"context"
	"errors"
)

var ErrNotAcquired = errors.New("lock: not acquired")

// Locker blocks until the key is held or ctx is done. The returned func
// releases the key and is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
