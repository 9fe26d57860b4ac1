package domain

import "strings"

// Уровни административного деления OSM
// https://wiki.openstreetmap.org/wiki/Tag:boundary%3Dadministrative
const (
	AdminLevelCountry = "2"
	AdminLevelState   = "4"
)

// Ключи тегов OSM, которые нужны для разбора границ
const (
	TagAdminLevel = "admin_level"
	TagName       = "name"
	TagNameEn     = "name:en"
)

// FeatureKind - тип административного объекта из ответа is_in
type FeatureKind int

const (
	OtherFeature FeatureKind = iota
	CountryFeature
	StateFeature
)

func (k FeatureKind) String() string {
	switch k {
	case CountryFeature:
		return "country"
	case StateFeature:
		return "state"
	default:
		return "other"
	}
}

// BoundaryFeature - административный объект, разобранный из тегов
type BoundaryFeature struct {
	Kind   FeatureKind
	Name   string
	NameEn string
}

// PreferredName возвращает английское название, если оно есть, иначе местное
func (f BoundaryFeature) PreferredName() string {
	if !IsBlank(f.NameEn) {
		return f.NameEn
	}
	if !IsBlank(f.Name) {
		return f.Name
	}
	return ""
}

// ClassifyFeature превращает набор тегов в BoundaryFeature.
// Объект без тегов или с неизвестным admin_level получает OtherFeature.
func ClassifyFeature(tags map[string]string) BoundaryFeature {
	if tags == nil {
		return BoundaryFeature{Kind: OtherFeature}
	}

	kind := OtherFeature
	switch strings.TrimSpace(tags[TagAdminLevel]) {
	case AdminLevelCountry:
		kind = CountryFeature
	case AdminLevelState:
		kind = StateFeature
	}

	return BoundaryFeature{
		Kind:   kind,
		Name:   tags[TagName],
		NameEn: tags[TagNameEn],
	}
}

// ResolveStateCountry извлекает регион и страну из списка объектов.
// При нескольких объектах одного уровня побеждает последний с непустым названием.
// Результат есть только если найдены оба уровня.
func ResolveStateCountry(features []BoundaryFeature) (StateCountry, bool) {
	var state, country string

	for _, f := range features {
		name := f.PreferredName()
		if name == "" {
			continue
		}

		switch f.Kind {
		case StateFeature:
			state = name
		case CountryFeature:
			country = name
		}
	}

	if state == "" || country == "" {
		return StateCountry{}, false
	}

	return StateCountry{State: state, Country: country}, true
}
