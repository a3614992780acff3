package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardLifecycle(t *testing.T) {
	t.Run("active while current and mounted", func(t *testing.T) {
		l := NewLifetime()
		g := l.Guard()
		assert.True(t, g.IsActive())
		assert.True(t, l.Mounted())
	})

	t.Run("superseded by newer guard", func(t *testing.T) {
		l := NewLifetime()
		old := l.Guard()
		current := l.Guard()
		assert.False(t, old.IsActive())
		assert.True(t, current.IsActive())
	})

	t.Run("unmount deactivates", func(t *testing.T) {
		l := NewLifetime()
		g := l.Guard()
		l.Unmount()
		assert.False(t, g.IsActive())
		assert.False(t, l.Mounted())
		assert.False(t, l.Guard().IsActive(), "guards issued after unmount start inactive")
	})

	t.Run("revoke is permanent", func(t *testing.T) {
		g := NewLifetime().Guard()
		g.Revoke()
		assert.False(t, g.IsActive())
		assert.False(t, g.IsActive())
	})
}
