package registry

import (
	"encoding/json"
	"io"
	"os"

	interchanges "github.com/juliuste/db-interchanges"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

type platformJSON struct {
	StationID string               `json:"station"`
	Name      string               `json:"name"`
	OSM       *interchanges.OSMRef `json:"osm"`
}

type elevatorJSON struct {
	OSM        int64  `json:"osm"`
	FacilityID string `json:"facility"`
}

type registryJSON struct {
	Platforms []platformJSON `json:"platforms"`
	Elevators []elevatorJSON `json:"elevators"`
}

// LoadJSON reads registry from JSON document:
//
//	{"platforms": [{"station": "8012183", "name": "1", "osm": {"type": "way", "id": 1}}],
//	 "elevators": [{"osm": 2, "facility": "10068718"}]}
//
// Platform without "osm" is known but not mapped.
func LoadJSON(r io.Reader) (*Registry, error) {
	doc := registryJSON{}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "Can't decode registry")
	}
	reg := New()
	for i, platform := range doc.Platforms {
		if platform.StationID == "" || platform.Name == "" {
			return nil, errors.Errorf("Platform #%d has no station or name", i)
		}
		if platform.OSM != nil && !validAnchorType(platform.OSM.Type) {
			return nil, errors.Errorf("Platform #%d has bad anchor type '%s'", i, platform.OSM.Type)
		}
		reg.AddPlatform(interchanges.Platform{
			StationID: platform.StationID,
			Name:      platform.Name,
			Anchor:    platform.OSM,
		})
	}
	for i, elevator := range doc.Elevators {
		if elevator.FacilityID == "" {
			return nil, errors.Errorf("Elevator #%d has no facility ID", i)
		}
		reg.AddElevator(osm.NodeID(elevator.OSM), elevator.FacilityID)
	}
	return reg, nil
}

// LoadJSONFile reads registry from JSON file
func LoadJSONFile(fname string) (*Registry, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open registry file")
	}
	defer file.Close()
	return LoadJSON(file)
}

func validAnchorType(t osm.Type) bool {
	switch t {
	case osm.TypeNode, osm.TypeWay, osm.TypeRelation:
		return true
	}
	return false
}
