package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountChange(t *testing.T) {
	id := uuid.New()

	change, err := ParseAccountChange(`{"id":"` + id.String() + `","old_points":30,"new_points":80}`)
	require.NoError(t, err)
	assert.Equal(t, id, change.AccountID)
	assert.Equal(t, int64(30), change.OldPoints)
	assert.Equal(t, int64(80), change.NewPoints)
	assert.Equal(t, int64(50), change.Delta())
}

func TestParseAccountChangeRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `id=1`},
		{"missing points", `{"id":"` + uuid.NewString() + `","old_points":1}`},
		{"bad id", `{"id":"nope","old_points":1,"new_points":2}`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccountChange(tt.payload)
			assert.Error(t, err)
		})
	}
}
