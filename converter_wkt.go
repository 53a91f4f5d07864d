package interchanges

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
)

// LineString converts positions to orb.LineString
func LineString(pts []GeoPoint) orb.LineString {
	line := make(orb.LineString, len(pts))
	for i := range pts {
		line[i] = pts[i].Point()
	}
	return line
}

// PrepareWKTLinestring returns WKT representation of LineString
func PrepareWKTLinestring(pts []GeoPoint) string {
	return wkt.MarshalString(LineString(pts))
}

// PrepareWKTPoint returns WKT representation of Point
func PrepareWKTPoint(pt GeoPoint) string {
	return wkt.MarshalString(pt.Point())
}

// PathLengthMeters returns haversine length of the polyline (meters)
func PathLengthMeters(pts []GeoPoint) float64 {
	if len(pts) < 2 {
		return 0
	}
	return geo.LengthHaversign(LineString(pts))
}
