package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONText(t *testing.T) {
	got, err := JSONText(map[string]any{"path": "/dashboard/admin"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"/dashboard/admin"}`, got)

	_, err = JSONText(make(chan int))
	assert.Error(t, err)
}
