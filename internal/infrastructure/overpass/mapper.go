package overpass

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/pkg/validator"
)

// rawCity - строка ответа на запрос городов (@id,name,name:en)
type rawCity struct {
	AreaID *int64 `csv:"@id"`
	Name   string `csv:"name"`
	NameEn string `csv:"name:en"`
}

// rawLatLon - строка ответа на запрос координат (@lat,@lon)
type rawLatLon struct {
	Latitude  string `csv:"@lat"`
	Longitude string `csv:"@lon"`
}

// rawAddress - строка ответа на запрос адресов
type rawAddress struct {
	Latitude    string `csv:"@lat"`
	Longitude   string `csv:"@lon"`
	HouseNumber string `csv:"addr:housenumber"`
	Street      string `csv:"addr:street"`
	Postcode    string `csv:"addr:postcode"`
}

// boundaryResponse - JSON-ответ запроса is_in
type boundaryResponse struct {
	Elements []struct {
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// decodeRows разбирает CSV с заголовком в строки типа T.
// Строки с неверным числом полей становятся nil, пустое тело - ноль строк.
// Заголовок без колонок T (страница ошибки вместо CSV) - ошибка разбора.
func decodeRows[T any](body []byte) ([]*T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	dec.DisallowMissingColumns = true

	if err := checkHeader[T](dec.Header()); err != nil {
		return nil, err
	}

	var rows []*T
	for {
		var row T
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, csvutil.ErrFieldCount) {
				rows = append(rows, nil)
				continue
			}
			return nil, err
		}
		rows = append(rows, &row)
	}

	return rows, nil
}

// checkHeader проверяет, что в заголовке есть все колонки T
func checkHeader[T any](header []string) error {
	var row T
	expected, err := csvutil.Header(row, "csv")
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range expected {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("unexpected csv header %q: missing columns %q", header, missing)
	}

	return nil
}

// mapCityInfo: английское название, если оно есть, иначе местное
func mapCityInfo(raw *rawCity) (domain.CityInfo, bool) {
	if raw == nil || raw.AreaID == nil {
		return domain.CityInfo{}, false
	}

	name := raw.Name
	if !domain.IsBlank(raw.NameEn) {
		name = raw.NameEn
	}

	city := domain.CityInfo{AreaID: *raw.AreaID, City: name}
	if err := validator.Validate(city); err != nil {
		return domain.CityInfo{}, false
	}

	return city, true
}

func mapLatLon(raw *rawLatLon) (domain.LatLon, bool) {
	if raw == nil {
		return domain.LatLon{}, false
	}

	point := domain.LatLon{Latitude: raw.Latitude, Longitude: raw.Longitude}
	if err := validator.Validate(point); err != nil {
		return domain.LatLon{}, false
	}

	return point, true
}

// mapAddress обрезает пробелы у дома, улицы и индекса; координаты не трогает
func mapAddress(raw *rawAddress) (domain.AddressRecord, bool) {
	if raw == nil {
		return domain.AddressRecord{}, false
	}

	address := domain.AddressRecord{
		HouseNumber: strings.TrimSpace(raw.HouseNumber),
		Street:      strings.TrimSpace(raw.Street),
		Postcode:    strings.TrimSpace(raw.Postcode),
		Latitude:    raw.Latitude,
		Longitude:   raw.Longitude,
	}
	if err := validator.Validate(address); err != nil {
		return domain.AddressRecord{}, false
	}

	return address, true
}

// mapCities всегда возвращает срез, возможно пустой
func mapCities(rows []*rawCity) []domain.CityInfo {
	cities := make([]domain.CityInfo, 0, len(rows))
	for _, row := range rows {
		if city, ok := mapCityInfo(row); ok {
			cities = append(cities, city)
		}
	}
	return cities
}

// mapAddresses возвращает false, если не осталось ни одного адреса
func mapAddresses(rows []*rawAddress) ([]domain.AddressRecord, bool) {
	addresses := make([]domain.AddressRecord, 0, len(rows))
	for _, row := range rows {
		if address, ok := mapAddress(row); ok {
			addresses = append(addresses, address)
		}
	}

	if len(addresses) == 0 {
		return nil, false
	}
	return addresses, true
}

// mapFeatures превращает элементы ответа is_in в типизированные объекты
func mapFeatures(resp boundaryResponse) []domain.BoundaryFeature {
	features := make([]domain.BoundaryFeature, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		features = append(features, domain.ClassifyFeature(el.Tags))
	}
	return features
}
