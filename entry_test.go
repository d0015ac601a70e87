package cache

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestEntryExpired(t *testing.T) {
	mock := clock.NewMock()
	entry := newEntry("key", 100, mock.Now(), mock.Now().Add(time.Millisecond*5))

	mock.Add(time.Millisecond * 10)

	assert.True(t, entry.isExpired(mock.Now()))
	assert.False(t, entry.isValid(mock.Now()))
}

func TestEntryExpiredAtDeadline(t *testing.T) {
	mock := clock.NewMock()
	entry := newEntry("key", 100, mock.Now(), mock.Now().Add(time.Millisecond*5))

	mock.Add(time.Millisecond * 5)

	assert.True(t, entry.isExpired(mock.Now()))
}

func TestEntryNotExpired(t *testing.T) {
	mock := clock.NewMock()
	entry := newEntry("key", 100, mock.Now(), mock.Now().Add(time.Millisecond*10))

	mock.Add(time.Millisecond * 5)

	assert.False(t, entry.isExpired(mock.Now()))
	assert.True(t, entry.isValid(mock.Now()))
}

func TestEntryNotExpiredZeroTime(t *testing.T) {
	mock := clock.NewMock()
	entry := newEntry("key", 100, mock.Now(), zeroTime)

	mock.Add(time.Hour)

	assert.False(t, entry.isExpired(mock.Now()))
	assert.True(t, entry.isValid(mock.Now()))
}
