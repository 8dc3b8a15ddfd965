package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Level
		wantErr bool
	}{
		{name: "name lowercase", input: "developer", want: Developer},
		{name: "name mixed case", input: "MainTainer", want: Maintainer},
		{name: "name with spaces", input: " owner ", want: Owner},
		{name: "numeric guest", input: "10", want: Guest},
		{name: "numeric owner", input: "50", want: Owner},
		{name: "numeric with spaces", input: " 30 ", want: Developer},
		{name: "unknown name", input: "admin", wantErr: true},
		{name: "off-scale number", input: "35", wantErr: true},
		{name: "planner is unsupported", input: "15", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-10", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "developer", Developer.String())
	assert.Equal(t, "owner", Owner.String())
	assert.Equal(t, "35", Level(35).String())
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, Guest < Reporter)
	assert.True(t, Reporter < Developer)
	assert.True(t, Developer < Maintainer)
	assert.True(t, Maintainer < Owner)
}
