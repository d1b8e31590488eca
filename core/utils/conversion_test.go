package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUint(t *testing.T) {
	id, err := ToUint(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ToUint(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []uint
		wantErr bool
	}{
		{"Separate", []string{"1", "2"}, []uint{1, 2}, false},
		{"Comma List", []string{"3,4, 5"}, []uint{3, 4, 5}, false},
		{"Mixed", []string{"1,2", "7"}, []uint{1, 2, 7}, false},
		{"Trailing Comma", []string{"9,"}, []uint{9}, false},
		{"Empty", []string{","}, nil, true},
		{"Invalid", []string{"1,x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDs(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("31/01/2026")
	assert.Error(t, err)
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool("1"))
	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool("yes"))
	assert.False(t, ToBool("0"))
	assert.False(t, ToBool(""))
}
