package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitiativePath(t *testing.T) {
	require.Equal(t, "/initiative/abc", InitiativePath("abc"))
	require.Equal(t, "/initiative/a%2Fb", InitiativePath("a/b"))
}

func TestResolve(t *testing.T) {
	r, ok := Resolve("/")
	require.True(t, ok)
	require.Equal(t, "dashboard", r.Name)

	r, ok = Resolve("/initiative/123")
	require.True(t, ok)
	require.Equal(t, "initiative-detail", r.Name)

	_, ok = Resolve("/initiative/")
	require.False(t, ok)
	_, ok = Resolve("/nope")
	require.False(t, ok)
	require.Len(t, Routes(), 6)
}
