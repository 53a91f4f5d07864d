package interchanges

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

func coordinates(pts []GeoPoint) [][]float64 {
	pts2d := make([][]float64, len(pts))
	for i := range pts {
		pts2d[i] = []float64{pts[i].Lon, pts[i].Lat}
	}
	return pts2d
}

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(pts []GeoPoint) (string, error) {
	b, err := geojson.NewLineStringGeometry(coordinates(pts)).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to GeoJSON format")
	}
	return string(b), nil
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt GeoPoint) (string, error) {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon, pt.Lat}).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to GeoJSON format")
	}
	return string(b), nil
}

// ResultFeatureCollection returns GeoJSON feature collection describing interchange result:
// path LineString (when path exists) plus a Point per path end
func ResultFeatureCollection(result *Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if result == nil || len(result.Geometry) == 0 {
		return fc
	}
	if len(result.Geometry) > 1 {
		line := geojson.NewLineStringFeature(coordinates(result.Geometry))
		line.SetProperty("barrierFree", result.BarrierFree.String())
		line.SetProperty("elevators", result.Elevators)
		line.SetProperty("lengthMeters", PathLengthMeters(result.Geometry))
		fc.AddFeature(line)
	}
	first, last := result.Geometry[0], result.Geometry[len(result.Geometry)-1]
	if len(result.Path) > 0 {
		start := geojson.NewPointFeature([]float64{first.Lon, first.Lat})
		start.SetProperty("node", result.Path[0])
		fc.AddFeature(start)
		end := geojson.NewPointFeature([]float64{last.Lon, last.Lat})
		end.SetProperty("node", result.Path[len(result.Path)-1])
		fc.AddFeature(end)
	}
	return fc
}
