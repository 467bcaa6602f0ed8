package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	Mode string
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository[fakeSession](0)

	_, found := repo.Get("1")
	assert.False(t, found)

	repo.Save("1", &fakeSession{Mode: "collecting"})
	got, found := repo.Get("1")
	assert.True(t, found)
	assert.Equal(t, "collecting", got.Mode)
	assert.Equal(t, 1, repo.Count())

	repo.Delete("1")
	_, found = repo.Get("1")
	assert.False(t, found)
}

func TestSessionRepository_Expires(t *testing.T) {
	repo := NewSessionRepository[fakeSession](20 * time.Millisecond)
	repo.Save("1", &fakeSession{})

	assert.Eventually(t, func() bool {
		_, found := repo.Get("1")
		return !found
	}, time.Second, 10*time.Millisecond)
}
