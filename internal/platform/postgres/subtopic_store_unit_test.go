package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPrerequisites(t *testing.T) {
	t.Parallel()

	data, err := marshalPrerequisites(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data), "nil list is stored as an empty array, not NULL")

	a := uuid.New()
	b := uuid.New()
	data, err = marshalPrerequisites([]uuid.UUID{a, b})
	require.NoError(t, err)

	roundTripped, err := unmarshalPrerequisites(data)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, roundTripped)
}

func TestUnmarshalPrerequisites(t *testing.T) {
	t.Parallel()

	got, err := unmarshalPrerequisites(nil)
	require.NoError(t, err)
	assert.Nil(t, got, "NULL column decodes to nil")

	got, err = unmarshalPrerequisites([]byte("[]"))
	require.NoError(t, err)
	assert.Nil(t, got, "empty array decodes to nil")

	_, err = unmarshalPrerequisites([]byte("{not json"))
	assert.Error(t, err)
}
