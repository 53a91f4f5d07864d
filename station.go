package interchanges

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// StationInput identifies platform of a station
type StationInput struct {
	// UIC location code, leading zeros are allowed
	StationID string `json:"stationId" validate:"required,numeric"`
	// Platform label, e.g. "1" or "3a"
	Platform string `json:"platform" validate:"required"`
}

var validate = validator.New()

// ValidateStation checks input shape and station code. Returns input with leading zeros removed from station code.
func ValidateStation(input StationInput) (StationInput, error) {
	if err := validate.Struct(input); err != nil {
		return StationInput{}, newError(KindInvalidInput, "validate station", err)
	}
	cleaned := strings.TrimLeft(input.StationID, "0")
	if !IsUICLocationCode(cleaned) {
		return StationInput{}, newError(KindInvalidInput, "validate station", errors.Errorf("station must be a valid UIC location code, got '%s'", input.StationID))
	}
	return StationInput{StationID: cleaned, Platform: input.Platform}, nil
}

// IsUICLocationCode reports whether code is 7-digit UIC location code with known country prefix
func IsUICLocationCode(code string) bool {
	if len(code) != 7 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, ok := uicCountryCodes[code[:2]]
	return ok
}

// UIC country codes (UIC leaflet 920-14)
var uicCountryCodes = map[string]struct{}{
	"10": {}, "20": {}, "21": {}, "22": {}, "23": {}, "24": {}, "25": {}, "26": {}, "27": {}, "28": {},
	"29": {}, "30": {}, "31": {}, "32": {}, "33": {}, "40": {}, "41": {}, "42": {}, "43": {}, "44": {},
	"49": {}, "50": {}, "51": {}, "52": {}, "53": {}, "54": {}, "55": {}, "56": {}, "57": {}, "58": {},
	"59": {}, "60": {}, "61": {}, "62": {}, "63": {}, "64": {}, "65": {}, "66": {}, "67": {}, "68": {},
	"70": {}, "71": {}, "72": {}, "73": {}, "74": {}, "75": {}, "76": {}, "77": {}, "78": {}, "79": {},
	"80": {}, "81": {}, "82": {}, "83": {}, "84": {}, "85": {}, "86": {}, "87": {}, "88": {}, "89": {},
	"90": {}, "91": {}, "92": {}, "93": {}, "94": {}, "95": {}, "96": {}, "97": {}, "98": {}, "99": {},
}
