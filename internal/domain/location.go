package domain

import "strings"

// CityInfo - город из Overpass: идентификатор области и название
type CityInfo struct {
	AreaID int64  `json:"area_id" validate:"gt=0"`
	City   string `json:"city" validate:"notblank"`
}

// LatLon - координаты точки внутри области.
// Хранятся строками, чтобы без потерь подставлять их обратно в запросы Overpass.
type LatLon struct {
	Latitude  string `json:"lat" validate:"notblank"`
	Longitude string `json:"lon" validate:"notblank"`
}

// StateCountry - регион (admin_level 4) и страна (admin_level 2)
type StateCountry struct {
	State   string `json:"state"`
	Country string `json:"country"`
}

// Location - полностью определённое местоположение города
type Location struct {
	AreaID  int64  `json:"area_id" db:"area_id"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Country string `json:"country" db:"country"`
}

// NewLocation собирает Location из города и его административной иерархии
func NewLocation(city CityInfo, sc StateCountry) Location {
	return Location{
		AreaID:  city.AreaID,
		City:    city.City,
		State:   sc.State,
		Country: sc.Country,
	}
}

// AddressRecord - нормализованный адрес (все поля обязательны)
type AddressRecord struct {
	HouseNumber string `json:"house_number" validate:"notblank"`
	Street      string `json:"street" validate:"notblank"`
	Postcode    string `json:"postcode" validate:"notblank"`
	Latitude    string `json:"lat" validate:"notblank"`
	Longitude   string `json:"lon" validate:"notblank"`
}

// SeededDocument - итог успешного сидинга одного города
type SeededDocument struct {
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Country string `json:"country" db:"country"`
	AreaID  *int64 `json:"area_id,omitempty" db:"area_id"`
	Size    int64  `json:"size" db:"size"`
}

// ValidAreaID проверяет, что идентификатор области положительный
func ValidAreaID(areaID int64) bool {
	return areaID > 0
}

// IsBlank - true для пустой строки или строки из одних пробелов
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
