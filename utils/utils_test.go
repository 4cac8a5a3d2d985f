package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 12)
	assert.Equal(t, strings.ToUpper(code), code)

	other, err := GenerateCode(6)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestGenerateIDSuffix(t *testing.T) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	suffix, err := GenerateIDSuffix(9)
	require.NoError(t, err)
	assert.Len(t, suffix, 9)
	for _, r := range suffix {
		assert.True(t, strings.ContainsRune(charset, r), "unexpected character %q", r)
	}
}

func TestRedisSnapshotStore_LoadMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSnapshotStore(db)

	mock.ExpectGet("eventhive:events").RedisNil()

	data, err := store.Load(context.Background(), "eventhive:events")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSnapshotStore_SaveAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisSnapshotStore(db)
	blob := []byte(`[{"id":"event-1"}]`)

	mock.ExpectSet("eventhive:events", blob, 0).SetVal("OK")
	mock.ExpectGet("eventhive:events").SetVal(string(blob))

	require.NoError(t, store.Save(context.Background(), "eventhive:events", blob))

	data, err := store.Load(context.Background(), "eventhive:events")
	require.NoError(t, err)
	assert.Equal(t, blob, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}
