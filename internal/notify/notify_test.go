package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDrainOrderAndReset(t *testing.T) {
	feed := NewFeed(10)

	feed.Success("Logged in")
	feed.Error("Could not empty cart")

	got := feed.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, "Logged in", got[0].Message)
	assert.Equal(t, LevelError, got[1].Level)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	assert.Empty(t, feed.Drain())
}

func TestFeedDropsOldestWhenFull(t *testing.T) {
	feed := NewFeed(3)

	for i := 0; i < 5; i++ {
		feed.Success(fmt.Sprintf("msg-%d", i))
	}

	got := feed.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "msg-2", got[0].Message)
	assert.Equal(t, "msg-4", got[2].Message)
}

func TestDrainEmptyIsNotNil(t *testing.T) {
	assert.NotNil(t, NewFeed(0).Drain())
}
