package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCacheKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "statistics counter",
			key:  "statistics:plans:total",
			want: "statistics",
		},
		{
			name: "catalog cache",
			key:  "catalog:active",
			want: "catalog",
		},
		{
			name: "plan view counter hash",
			key:  "plan:counters:views",
			want: "counter",
		},
		{
			name: "session data",
			key:  "session:8f14e45f",
			want: "session",
		},
		{
			name: "anything else",
			key:  "leftover:key",
			want: "unknown",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, classifyCacheKey(tc.key))
		})
	}
}
