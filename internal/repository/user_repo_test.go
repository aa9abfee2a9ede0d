package repository_test

import (
	"errors"
	"sync"
	"testing"

	"bursary/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAdjustScoreClampsInPlace(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	_, err := users.GetOrCreate(10, 500)
	require.NoError(t, err)

	score, err := users.AdjustScore(10, 30, 0, 2_000)
	require.NoError(t, err)
	assert.Equal(t, 530, score)

	score, err = users.AdjustScore(10, 10_000, 0, 2_000)
	require.NoError(t, err)
	assert.Equal(t, 2_000, score)

	score, err = users.AdjustScore(10, -10_000, 0, 2_000)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestAdjustScoreMissingUser(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	_, err := users.AdjustScore(99, 30, 0, 2_000)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAdjustScoreConcurrentDeltasBothLand(t *testing.T) {
	users := repository.NewUserRepository(newTestDB(t))
	_, err := users.GetOrCreate(10, 500)
	require.NoError(t, err)

	// Delta and clamp ride inside one UPDATE, so interleaved settlements
	// cannot lose a delta to a stale read.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.AdjustScore(10, 30, 0, 2_000)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	u, err := users.GetByID(10)
	require.NoError(t, err)
	assert.Equal(t, 560, u.CreditScore)
}
