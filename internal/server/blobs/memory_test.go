package blobs

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	data := []byte("sealed")
	require.NoError(t, s.Put(ctx, "u1/f1", data))
	data[0] = 'X'

	got, err := s.Get(ctx, "u1/f1")
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got, "store keeps its own copy")

	assert.True(t, s.Has("u1/f1"))
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "u1/f1"))
	assert.ErrorIs(t, s.Delete(ctx, "u1/f1"), common.ErrorNotFound)

	_, err = s.Get(ctx, "u1/f1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, s.Len())
}
