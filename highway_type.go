package interchanges

import "strings"

type HighwayType uint16

const (
	HIGHWAY_FOOTWAY = HighwayType(iota + 1)
	HIGHWAY_PEDESTRIAN
	HIGHWAY_PATH
	HIGHWAY_CORRIDOR
	HIGHWAY_PLATFORM
	HIGHWAY_STEPS
	HIGHWAY_ELEVATOR
	HIGHWAY_SERVICE
	HIGHWAY_UNCLASSIFIED
	HIGHWAY_UNDEFINED = HighwayType(0)
)

func (iotaIdx HighwayType) String() string {
	return [...]string{"undefined", "footway", "pedestrian", "path", "corridor", "platform", "steps", "elevator", "service", "unclassified"}[iotaIdx]
}

// getHighwayType returns type for given `highway` tag value (case-insensitive)
func getHighwayType(str string) HighwayType {
	if found, ok := highwaysTypes[normalizeTag(str)]; ok {
		return found
	}
	return HIGHWAY_UNDEFINED
}

// normalizeTag trims and lowercases tag value
func normalizeTag(str string) string {
	return strings.ToLower(strings.TrimSpace(str))
}

var (
	highwaysTypes = map[string]HighwayType{
		"footway":      HIGHWAY_FOOTWAY,
		"pedestrian":   HIGHWAY_PEDESTRIAN,
		"path":         HIGHWAY_PATH,
		"corridor":     HIGHWAY_CORRIDOR,
		"platform":     HIGHWAY_PLATFORM,
		"steps":        HIGHWAY_STEPS,
		"elevator":     HIGHWAY_ELEVATOR,
		"service":      HIGHWAY_SERVICE,
		"unclassified": HIGHWAY_UNCLASSIFIED,
	}
)
