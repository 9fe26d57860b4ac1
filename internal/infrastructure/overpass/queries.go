package overpass

import (
	"fmt"

	"github.com/address-data-service/internal/domain"
)

// Виды запросов, используются в логах и метриках
const (
	queryCities      = "cities"
	queryCity        = "city"
	queryCoordinates = "coordinates"
	queryAddresses   = "addresses"
	queryBoundary    = "boundary"
)

// QuerySet - шаблоны запросов Overpass QL
type QuerySet struct {
	Cities      func() string
	City        func(areaID int64) string
	Coordinates func(areaID int64) string
	Addresses   func(areaID int64) string
	Boundary    func(point domain.LatLon) string
}

// DefaultQuerySet возвращает стандартные запросы: города, один город,
// точку внутри области, адреса области и административные границы точки.
func DefaultQuerySet() QuerySet {
	return QuerySet{
		Cities: func() string {
			return `[out:csv(::id,"name","name:en";true;",")];area[place="city"];out;`
		},
		City: func(areaID int64) string {
			return fmt.Sprintf(`[out:csv(::id,"name","name:en";true;",")];area(%d);out;`, areaID)
		},
		Coordinates: func(areaID int64) string {
			return fmt.Sprintf(`[out:csv(::lat, ::lon;true;",")];area(%d)->.a;node(area.a);out 1;`, areaID)
		},
		Addresses: func(areaID int64) string {
			return fmt.Sprintf(`[out:csv(::lat, ::lon, "addr:housenumber", "addr:street", "addr:postcode";true;",")];`+
				`area(%d);nwr(area)["addr:housenumber"]["addr:street"]["addr:postcode"];out center;`, areaID)
		},
		Boundary: func(point domain.LatLon) string {
			return fmt.Sprintf(`[out:json];is_in(%s,%s)->.a;`+
				`area.a[name][boundary=administrative][admin_level=2];out tags;`+
				`area.a[name][boundary=administrative][admin_level=4];out tags;`,
				point.Latitude, point.Longitude)
		},
	}
}
