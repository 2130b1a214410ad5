package authz

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportQueueAccess(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		name string
		user models.User
		want bool
	}{
		{"regular user", models.User{}, false},
		{"moderator", models.User{IsModerator: true}, true},
		{"admin inherits moderator", models.User{IsAdmin: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, act := range []string{ActionList, ActionRead, ActionResolve} {
				ok, err := e.Can(&tt.user, ObjectReport, act)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok, act)
			}
		})
	}
}

func TestModeratorCannotTouchOtherObjects(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	ok, err := e.Can(&models.User{IsModerator: true}, "article", "delete")
	require.NoError(t, err)
	assert.False(t, ok)
}
