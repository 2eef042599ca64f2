package plugin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrDuplicateID(t *testing.T) {
	err := ErrDuplicateID{ID: "feed"}

	t.Run("Error names the plugin and carries a hint", func(t *testing.T) {
		assert.Contains(t, err.Error(), "plugin 'feed' already registered")
		assert.Contains(t, err.Error(), "Hint:")
	})

	t.Run("errors.As matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("register: %w", err)
		var target ErrDuplicateID
		require.True(t, errors.As(wrapped, &target))
		assert.Equal(t, "feed", target.ID)
	})
}

func TestErrPluginNotFound(t *testing.T) {
	err := ErrPluginNotFound{ID: "blog"}

	assert.Contains(t, err.Error(), "plugin 'blog' not found")
	assert.True(t, errors.Is(err, ErrPluginNotFound{ID: "blog"}))
	assert.False(t, errors.Is(err, ErrPluginNotFound{ID: "feed"}))
}

func TestErrDescriptor(t *testing.T) {
	underlying := errors.New("plugin declares no routes")

	t.Run("Error includes the id", func(t *testing.T) {
		err := ErrDescriptor{ID: "feed", Err: underlying}
		assert.Equal(t, "plugin 'feed' descriptor invalid: plugin declares no routes", err.Error())
	})

	t.Run("Error handles an empty id", func(t *testing.T) {
		err := ErrDescriptor{Err: underlying}
		assert.Contains(t, err.Error(), "<unnamed>")
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		err := ErrDescriptor{ID: "feed", Err: underlying}
		assert.True(t, errors.Is(err, underlying))
	})
}

func TestRouteErrorsAreReexported(t *testing.T) {
	var err error = ErrRouteConflict{Pattern: "/feed", ExistingPlugin: "a", IncomingPlugin: "b"}
	assert.Contains(t, err.Error(), "route conflict on pattern '/feed' between plugin 'a' and plugin 'b'")

	err = ErrInvalidPattern{Pattern: "feed", Reason: "must start with '/'"}
	assert.Contains(t, err.Error(), "invalid route pattern 'feed'")
}
