package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hana.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKey_StableForSameInput(t *testing.T) {
	assert := assert.New(t)

	a := Key([]byte("@hana latest;"), "opengl")
	b := Key([]byte("@hana latest;"), "opengl")
	assert.Equal(a, b)

	c := Key([]byte("@hana latest;"), "spirv")
	assert.NotEqual(a, c)
}

func TestStore_GetMissReturnsErrNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutThenGetRoundTrips(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	key := Key([]byte("source"), "opengl")
	stages := map[string]string{
		"vertex":   "#version 410 core\nvoid main() {}\n",
		"fragment": "#version 410 core\nvoid main() {}\n",
	}

	require.NoError(t, s.Put(key, stages))

	got, err := s.Get(key)
	assert.NoError(err)
	assert.Equal(stages, got)
}

func TestStore_PutOverwritesExistingKey(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	key := Key([]byte("source"), "opengl")
	require.NoError(t, s.Put(key, map[string]string{"vertex": "one"}))
	require.NoError(t, s.Put(key, map[string]string{"vertex": "two"}))

	got, err := s.Get(key)
	assert.NoError(err)
	assert.Equal(map[string]string{"vertex": "two"}, got)
}

func TestStore_LogCompileAndHistory(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	id1, err := s.LogCompile("hash1", "opengl", 2)
	require.NoError(t, err)
	assert.NotEmpty(id1)

	id2, err := s.LogCompile("hash2", "opengl", 1)
	require.NoError(t, err)

	entries, err := s.History(10)
	assert.NoError(err)
	require.Len(t, entries, 2)
	assert.Equal(id2, entries[0].ID)
	assert.Equal(id1, entries[1].ID)
}

func TestStore_HistoryRespectsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.LogCompile("hash", "opengl", 1)
		require.NoError(t, err)
	}

	entries, err := s.History(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
