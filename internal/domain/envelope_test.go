package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	t.Run("routing fields are decoded", func(t *testing.T) {
		env := ParseEnvelope([]byte(`{"room":"r1","type":"offer","to":"p2","from":"p1","sdp":"v=0"}`))
		require.NotNil(t, env)

		assert.Equal(t, "r1", env.Room)
		assert.Equal(t, "offer", env.Type)
		assert.Equal(t, "p2", env.To)
		assert.Equal(t, "p1", env.From)
	})

	t.Run("unknown types pass through", func(t *testing.T) {
		env := ParseEnvelope([]byte(`{"room":"r1","type":"anything-custom"}`))
		require.NotNil(t, env)
		assert.Equal(t, "anything-custom", env.Type)
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `not json at all`},
		{"missing room", `{"type":"offer"}`},
		{"missing type", `{"room":"r1"}`},
		{"wrong field types", `{"room":42,"type":"offer"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is dropped", func(t *testing.T) {
			assert.Nil(t, ParseEnvelope([]byte(tt.raw)))
		})
	}
}

func TestStaffBadge(t *testing.T) {
	assert.Equal(t, RoleAdmin, StaffBadge(RoleAdmin))
	assert.Equal(t, RoleCreator, StaffBadge(RoleCreator))
	assert.Empty(t, StaffBadge(RoleViewer))
	assert.Empty(t, StaffBadge(""))
}
