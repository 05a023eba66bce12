package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc123", want: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", want: "abc123"},
		{name: "mixed case scheme", header: "BeArEr abc123", want: "abc123"},
		{name: "missing", header: "", wantErr: ErrMissingToken},
		{name: "scheme only", header: "Bearer", wantErr: ErrMalformedHeader},
		{name: "empty token", header: "Bearer ", wantErr: ErrMalformedHeader},
		{name: "wrong scheme", header: "Basic abc123", wantErr: ErrMalformedHeader},
		{name: "three parts", header: "Bearer abc 123", wantErr: ErrMalformedHeader},
		{name: "double space", header: "Bearer  abc123", wantErr: ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := wrap(ErrSessionExpired, assert.AnError)

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.NotErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, assert.AnError)

	authErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Session Expired", authErr.Message)
}
