package wsema

import (
	"errors"
	"fmt"
)

// ErrPoisoned is returned by acquire operations on a poisoned semaphore.
// It is terminal: a poisoned semaphore never hands out permits again.
var ErrPoisoned = errors.New("wsema: semaphore poisoned")

var (
	// ErrEmptyName is reported by RegistryBuilder.Build for an entry
	// registered without a name.
	ErrEmptyName = errors.New("wsema: empty semaphore name")

	// ErrDuplicateName is reported by RegistryBuilder.Build when a name was
	// registered more than once.
	ErrDuplicateName = errors.New("wsema: duplicate semaphore name")

	// ErrTooManyPermits is reported by RegistryBuilder.Build for an entry
	// whose permits exceed the maximum of its backend.
	ErrTooManyPermits = errors.New("wsema: permits exceed backend maximum")
)

func checkAmount(n, max uint64) {
	if n > max {
		panic(fmt.Sprintf("wsema: amount %d exceeds maximum %d", n, max))
	}
}

func panicOverflow(n uint64) {
	panic(fmt.Sprintf("wsema: permit count overflow releasing %d", n))
}
