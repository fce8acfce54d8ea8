package capture

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	frame := []byte{0xD1, 0x01, 0x00, 0x40, 0x00}

	id, err := s.Put(frame)
	require.NoError(t, err)
	assert.NotEqual(t, ksuid.Nil, id)

	// Caller mutations must not leak into the store.
	frame[1] = 0xFF

	entry, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, []byte{0xD1, 0x01, 0x00, 0x40, 0x00}, entry.Frame)
	assert.Equal(t, id.Time(), entry.Captured)
}

func TestStore_PutEmpty(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Put(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(ksuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)

	ids := make(map[ksuid.KSUID]byte)
	for i := 0; i < 5; i++ {
		id, err := s.Put([]byte{0xD1, byte(i)})
		require.NoError(t, err)
		ids[id] = byte(i)
	}

	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		want, ok := ids[e.ID]
		require.True(t, ok, "unexpected id %s", e.ID)
		assert.Equal(t, []byte{0xD1, want}, e.Frame)
		if i > 0 {
			assert.Equal(t, 1, ksuid.Compare(e.ID, entries[i-1].ID), "entries must be in id order")
		}
	}

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, entries[:2], limited)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Put([]byte{0xDA})
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	id, err := s.Put([]byte{0xD1, 0x02})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	entry, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD1, 0x02}, entry.Frame)
}

func TestStore_ListKeepsCaptureOrder(t *testing.T) {
	s := openTestStore(t)

	// A tracking feed runs at 50-60 frames per second, so these share a
	// timestamp second.
	const n = 50
	for i := 0; i < n; i++ {
		_, err := s.Put([]byte{byte(i)})
		require.NoError(t, err)
	}

	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, []byte{byte(i)}, e.Frame, "entry %d out of capture order", i)
	}
}

func TestStore_OrderSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := s.Put([]byte{byte(i)})
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	for i := 10; i < 20; i++ {
		_, err := s.Put([]byte{byte(i)})
		require.NoError(t, err)
	}

	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 20)
	for i, e := range entries {
		assert.Equal(t, []byte{byte(i)}, e.Frame, "entry %d out of capture order", i)
	}
}
