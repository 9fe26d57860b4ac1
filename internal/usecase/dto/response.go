package dto

import "github.com/address-data-service/internal/domain"

// AddressDocumentResponse - документ с адресами одного города
type AddressDocumentResponse struct {
	AreaID  *int64 `json:"area_id,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Size    int64  `json:"size"`
}

// AddressDocumentsResponse - список документов
type AddressDocumentsResponse struct {
	Documents []AddressDocumentResponse `json:"documents"`
	Total     int                       `json:"total"`
}

// NewAddressDocumentResponse преобразует SeededDocument в ответ API
func NewAddressDocumentResponse(doc *domain.SeededDocument) *AddressDocumentResponse {
	if doc == nil {
		return nil
	}

	return &AddressDocumentResponse{
		AreaID:  doc.AreaID,
		City:    doc.City,
		State:   doc.State,
		Country: doc.Country,
		Size:    doc.Size,
	}
}

// NewAddressDocumentsResponse преобразует список документов, пропуская документы без города
func NewAddressDocumentsResponse(docs []domain.SeededDocument) *AddressDocumentsResponse {
	resp := &AddressDocumentsResponse{
		Documents: make([]AddressDocumentResponse, 0, len(docs)),
	}

	for i := range docs {
		if domain.IsBlank(docs[i].City) {
			continue
		}
		resp.Documents = append(resp.Documents, *NewAddressDocumentResponse(&docs[i]))
	}
	resp.Total = len(resp.Documents)

	return resp
}
