package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	id    string
	email string
}

func (u user) ID() string { return u.id }

func (u user) UniqueFields() []UniqueField {
	return []UniqueField{{Name: "email", Value: u.email}}
}

func TestInMemoryStoreSatisfiesContracts(t *testing.T) {
	var _ ReadStore[user] = NewInMemoryStore[user]()
	var _ Store[user] = NewInMemoryStore[user]()
}

func TestInMemoryStoreQueryByID(t *testing.T) {
	s := NewInMemoryStore[user]()
	_, err := s.Insert(user{id: "a", email: "a@example.com"})
	require.NoError(t, err)

	got, ok := s.QueryByID("a")
	require.True(t, ok)
	assert.Equal(t, "a@example.com", got.email)

	_, ok = s.QueryByID("missing")
	assert.False(t, ok)
}

func TestInMemoryStoreUniqueViolation(t *testing.T) {
	s := NewInMemoryStore[user]()
	_, err := s.Insert(user{id: "a", email: "dup@example.com"})
	require.NoError(t, err)

	_, err = s.Insert(user{id: "b", email: "dup@example.com"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.Contains(t, err.Error(), "unique-violation")
	assert.Contains(t, err.Error(), "email")
}

func TestInMemoryStoreListAllOrder(t *testing.T) {
	s := NewInMemoryStore[user]()
	for _, id := range []string{"1", "2", "3"} {
		_, err := s.Insert(user{id: id, email: id + "@example.com"})
		require.NoError(t, err)
	}
	all := s.ListAll()
	require.Len(t, all, 3)
	assert.Equal(t, "1", all[0].id)
	assert.Equal(t, "3", all[2].id)
}

func TestInMemoryStoreDelete(t *testing.T) {
	s := NewInMemoryStore[user]()
	_, err := s.Insert(user{id: "a", email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Empty(t, s.ListAll())
}

func TestValidateUUID(t *testing.T) {
	id := NewID()
	canonical, err := ValidateUUID(id)
	require.NoError(t, err)
	assert.Equal(t, id, canonical)

	_, err = ValidateUUID("not-a-uuid")
	require.Error(t, err)
}

func TestNonEmpty(t *testing.T) {
	assert.False(t, NonEmpty([]int(nil)))
	assert.True(t, NonEmpty([]int{1}))
}
