package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreSetGet(t *testing.T) {
	store := NewStore()

	assert.Nil(t, store.Get(1))

	store.Set(1, []byte(`{"score":1}`))
	store.Set(2, []byte(`{"score":2}`))

	assert.Equal(t, []byte(`{"score":1}`), store.Get(1))
	assert.Equal(t, []byte(`{"score":2}`), store.Get(2))

	store.Set(1, []byte(`{"score":3}`))
	assert.Equal(t, []byte(`{"score":3}`), store.Get(1))
}

func TestStoreCopiesPayloads(t *testing.T) {
	store := NewStore()

	payload := []byte(`{"score":1}`)
	store.Set(1, payload)
	payload[2] = 'X'

	assert.Equal(t, []byte(`{"score":1}`), store.Get(1))

	got := store.Get(1)
	got[2] = 'Y'
	assert.Equal(t, []byte(`{"score":1}`), store.Get(1))
}

func TestStoreClear(t *testing.T) {
	store := NewStore()

	store.Set(1, []byte(`{}`))
	store.Set(2, []byte(`{}`))
	store.Clear(1)

	assert.Nil(t, store.Get(1))
	assert.NotNil(t, store.Get(2))

	// Clearing an unknown court is a no-op.
	store.Clear(9)
}
