package interchanges

// Tag keys consumed by the accessibility filter
const (
	TAG_ACCESS     = "access"
	TAG_FOOT       = "foot"
	TAG_PEDESTRIAN = "pedestrian"
	TAG_HIGHWAY    = "highway"
	TAG_INCLINE    = "incline"
	TAG_WHEELCHAIR = "wheelchair"
	TAG_CONVEYING  = "conveying"
)

var (
	// Values of `access`, `foot` or `pedestrian` which forbid walking
	walkForbiddenAccessValues = map[string]struct{}{
		"no":           {},
		"agricultural": {},
		"discouraged":  {},
		"forestry":     {},
		"official":     {},
	}

	// Values of `highway` which are never walkable
	walkForbiddenHighways = map[string]struct{}{
		"motorway":      {},
		"motorway_link": {},
		"undefined":     {},
		"unknown":       {},
		"bridleway":     {},
		"construction":  {},
		"cycleway":      {},
		"bus_guideway":  {},
	}

	// Tag keys holding access restrictions for pedestrians
	walkAccessKeys = []string{TAG_ACCESS, TAG_FOOT, TAG_PEDESTRIAN}
)
