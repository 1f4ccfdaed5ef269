package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeChallenge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Time   Management ", "time management"},
		{"time management", "time management"},
		{"TIME\tMANAGEMENT", "time management"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeChallenge(tc.in))
	}
}

func TestBuildKeyEquivalence(t *testing.T) {
	t.Parallel()

	a := BuildKey("  Time   Management ", "Time Management")
	b := BuildKey("time management", "Time Management")
	require.Equal(t, a.String(), b.String())

	// Different category, different key.
	c := BuildKey("time management", "Leadership")
	require.NotEqual(t, a.String(), c.String())

	// Category absence maps to the sentinel.
	d := BuildKey("time management", "")
	require.Equal(t, NoCategory, d.Category)
	require.NotEqual(t, a.String(), d.String())
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	k := BuildKey("hard to focus", "Work-Life Balance")
	require.Equal(t, "work-life-balance", k.Category)
	require.Len(t, k.Hash, 64)
	require.Equal(t, "advice:work-life-balance:"+k.Hash, k.String())

	parsed, ok := parseKey(k.String())
	require.True(t, ok)
	require.Equal(t, k, parsed)

	_, ok = parseKey("not-an-advice-key")
	require.False(t, ok)
}
