package interchanges

import (
	"github.com/paulmach/osm"
)

// AccessOptions tunes accessibility filter
type AccessOptions struct {
	// AllowSteps permits plain stairs. Routing graphs are always built with AllowSteps == false.
	AllowSteps bool
}

// WaySegment is a single edge of a way between two consecutive geometry nodes
type WaySegment struct {
	WayID osm.WayID
	From  GeoNode
	To    GeoNode
	Tags  osm.Tags
}

// IsAllowed reports whether given segment is walkable for a person who cannot use stairs
// (or can, if opts.AllowSteps is set). Tag comparison is case-insensitive.
//
// See ref.: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Valhalla
func IsAllowed(segment WaySegment, opts AccessOptions) bool {
	return tagsAllowed(segment.Tags, opts)
}

func tagsAllowed(tags osm.Tags, opts AccessOptions) bool {
	for _, key := range walkAccessKeys {
		if _, forbidden := walkForbiddenAccessValues[normalizeTag(tags.Find(key))]; forbidden {
			return false
		}
	}

	highway := normalizeTag(tags.Find(TAG_HIGHWAY))
	if _, forbidden := walkForbiddenHighways[highway]; forbidden {
		return false
	}

	isSteps := getHighwayType(highway) == HIGHWAY_STEPS
	conveying := normalizeTag(tags.Find(TAG_CONVEYING)) == "yes"
	hasIncline := normalizeTag(tags.Find(TAG_INCLINE)) != ""
	wheelchair := normalizeTag(tags.Find(TAG_WHEELCHAIR))

	if isSteps && !opts.AllowSteps {
		return false
	}
	// Escalators and moving walkways are not modeled
	if isSteps && conveying {
		return false
	}
	if hasIncline && conveying {
		return false
	}

	if wheelchair == "no" && !opts.AllowSteps {
		return false
	}
	if hasIncline && wheelchair != "yes" && !opts.AllowSteps {
		return false
	}
	return true
}
