package domain

import "github.com/google/uuid"

// Имена стримов для фонового сидинга
const (
	StreamSeedingRequest = "stream:seeding:request"
	StreamSeedingDone    = "stream:seeding:done"
)

// SeedingRequestEvent - входящая заявка на сидинг.
// Если задан AreaID, добавляется один город, иначе запускается полный сидинг с Limit.
type SeedingRequestEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	AreaID    *int64    `json:"area_id,omitempty"`
	Limit     *int64    `json:"limit,omitempty" validate:"omitempty,min=1"`
}

// IsSingleCity проверяет, что заявка на один город
func (e *SeedingRequestEvent) IsSingleCity() bool {
	return e.AreaID != nil
}

// SeedingDoneEvent - результат обработки заявки
type SeedingDoneEvent struct {
	RequestID uuid.UUID        `json:"request_id"`
	Documents []SeededDocument `json:"documents,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
