package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		county  string
		want    Location
		wantErr bool
	}{
		{"state only", "ca", "", Location{State: "CA"}, false},
		{"county normalized", " NY ", "Kings_County", Location{State: "NY", County: "kings_county"}, false},
		{"district", "dc", "", Location{State: "DC"}, false},
		{"unknown state", "XX", "", Location{}, true},
		{"empty state", "", "", Location{}, true},
		{"county with spaces", "CA", "alameda county", Location{}, true},
		{"county path traversal", "CA", "../etc", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.state, tt.county)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_DisplayName(t *testing.T) {
	assert.Equal(t, "California", Location{State: "CA"}.DisplayName())
	assert.Equal(t, "Alameda County, California", Location{State: "CA", County: "alameda_county"}.DisplayName())
	assert.Equal(t, "St Louis City, Missouri", Location{State: "MO", County: "st_louis_city"}.DisplayName())
}

func TestLocation_Key(t *testing.T) {
	assert.Equal(t, "CA", Location{State: "CA"}.Key())
	assert.Equal(t, "CA/alameda_county", Location{State: "CA", County: "alameda_county"}.Key())
}
