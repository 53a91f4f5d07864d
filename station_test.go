package interchanges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStation(t *testing.T) {
	got, err := ValidateStation(StationInput{StationID: "008012183", Platform: "1"})
	require.NoError(t, err)
	assert.Equal(t, StationInput{StationID: "8012183", Platform: "1"}, got)

	bad := []StationInput{
		{StationID: "", Platform: "1"},
		{StationID: "8012183", Platform: ""},
		{StationID: "Leipzig Messe", Platform: "1"},
		{StationID: "801218", Platform: "1"},
		{StationID: "80121830", Platform: "1"},
		{StationID: "0000000", Platform: "1"},
		{StationID: "1112183", Platform: "1"},
	}
	for _, input := range bad {
		_, err := ValidateStation(input)
		if assert.Error(t, err, "input %+v", input) {
			assert.True(t, IsInvalidInput(err))
		}
	}
}

func TestIsUICLocationCode(t *testing.T) {
	assert.True(t, IsUICLocationCode("8012183"))
	assert.True(t, IsUICLocationCode("8500010"))
	assert.False(t, IsUICLocationCode("08012183"))
	assert.False(t, IsUICLocationCode("80121a3"))
	assert.False(t, IsUICLocationCode("0012183"))
}
