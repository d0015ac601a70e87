package cache

import "time"

var zeroTime = time.Time{}

type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
	expireAt   time.Time
}

func newEntry[K comparable, V any](
	key K,
	value V,
	insertedAt time.Time,
	expireAt time.Time,
) *entry[K, V] {
	return &entry[K, V]{
		key:        key,
		value:      value,
		insertedAt: insertedAt,
		expireAt:   expireAt,
	}
}

// An entry is expired once 'now' reaches expireAt. A zero expireAt never expires.
func (e *entry[K, V]) isExpired(now time.Time) bool {
	if e.expireAt.IsZero() {
		return false
	}
	return !now.Before(e.expireAt)
}

func (e *entry[K, V]) isValid(now time.Time) bool {
	return !e.isExpired(now)
}
