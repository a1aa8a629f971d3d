package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name      string
		predicted string
		result    string
		want      bool
	}{
		{"exact match", "A", "A", true},
		{"wrong outcome", "A", "B", false},
		{"draw predicted and happened", "C", "C", true},
		{"result never recorded counts as incorrect", "A", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, score(tc.predicted, tc.result))
		})
	}
}

func TestVerdict(t *testing.T) {
	require.Equal(t, "won", verdict([]bool{true, true, true}))
	require.Equal(t, "lost", verdict([]bool{true, false, true}))
	require.Equal(t, "lost", verdict([]bool{false, false, false}))
	// sem seleções não acontece na prática, mas o zero-value é won
	require.Equal(t, "won", verdict(nil))
}
