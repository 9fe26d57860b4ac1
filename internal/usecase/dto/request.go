package dto

// SeedRequest - запрос на запуск сидинга
type SeedRequest struct {
	Limit *int64 `json:"limit,omitempty" query:"limit" validate:"omitempty,min=1"`
}

// AreaIDParam - идентификатор области из пути запроса
type AreaIDParam struct {
	AreaID int64 `params:"areaId"`
}
