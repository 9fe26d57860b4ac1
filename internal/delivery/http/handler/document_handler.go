package handler

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/pkg/errors"
	"github.com/address-data-service/internal/pkg/utils"
	"github.com/address-data-service/internal/pkg/validator"
	"github.com/address-data-service/internal/usecase"
	"github.com/address-data-service/internal/usecase/dto"
)

// DocumentHandler - обработчик запросов к документам с адресами
type DocumentHandler struct {
	seedingUC  *usecase.SeedingUseCase
	documentUC *usecase.DocumentUseCase
	logger     *zap.Logger
}

// NewDocumentHandler - создание нового DocumentHandler
func NewDocumentHandler(seedingUC *usecase.SeedingUseCase, documentUC *usecase.DocumentUseCase, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		seedingUC:  seedingUC,
		documentUC: documentUC,
		logger:     logger,
	}
}

// Seed godoc
// @Summary Запуск сидинга
// @Description Обходит список городов Overpass и сохраняет документы, пока не наберётся limit. Без limit обходит все города.
// @Tags Documents
// @Produce json
// @Param limit query int false "Максимальное количество документов (минимум 1)"
// @Success 200 {object} utils.SuccessResponse{data=dto.AddressDocumentsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/documents/seed [post]
func (h *DocumentHandler) Seed(c *fiber.Ctx) error {
	var req dto.SeedRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.New(errors.CodeValidationFailed, err.Error(), http.StatusBadRequest))
	}

	docs, err := h.seedingUC.RunSeeding(c.UserContext(), req.Limit)
	resp := dto.NewAddressDocumentsResponse(docs)

	if isInterrupted(err) {
		h.logger.Warn("Seeding interrupted", zap.Int("seeded", resp.Total), zap.Error(err))
		// Засеянные до отмены документы остаются на диске, отдаём их в details
		return utils.SendError(c, errors.New(
			errors.CodeSeedingInterrupted,
			"Seeding was interrupted before it finished",
			http.StatusServiceUnavailable,
		).WithDetails(map[string]interface{}{
			"documents": resp.Documents,
			"total":     resp.Total,
		}))
	}
	if err != nil {
		h.logger.Error("Seeding failed", zap.Error(err))
		return utils.SendError(c, errors.FromDomain(err))
	}

	meta := &utils.Meta{Total: resp.Total}
	if req.Limit != nil {
		meta.Limit = *req.Limit
	}

	return utils.SendSuccess(c, resp, meta)
}

// AddCity godoc
// @Summary Добавление города
// @Description Проверяет город в Overpass (название, не меньше 50 адресов, регион и страна) и сохраняет документ с адресами
// @Tags Documents
// @Produce json
// @Param areaId path int true "Идентификатор области Overpass"
// @Success 201 {object} utils.SuccessResponse{data=dto.AddressDocumentResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/documents/{areaId} [post]
func (h *DocumentHandler) AddCity(c *fiber.Ctx) error {
	var params dto.AreaIDParam
	if err := c.ParamsParser(&params); err != nil {
		return utils.SendError(c, errors.ErrInvalidAreaID)
	}

	doc, err := h.seedingUC.AddCity(c.UserContext(), params.AreaID)
	if err != nil {
		return utils.SendError(c, errors.FromDomain(err))
	}

	return utils.SendCreated(c, dto.NewAddressDocumentResponse(doc))
}

// GetDocument godoc
// @Summary Документ города
// @Description Возвращает документ с адресами для области
// @Tags Documents
// @Produce json
// @Param areaId path int true "Идентификатор области Overpass"
// @Success 200 {object} utils.SuccessResponse{data=dto.AddressDocumentResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/documents/{areaId} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	var params dto.AreaIDParam
	if err := c.ParamsParser(&params); err != nil {
		return utils.SendError(c, errors.ErrInvalidAreaID)
	}

	resp, err := h.documentUC.GetDocument(c.UserContext(), params.AreaID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, nil)
}

// ListDocuments godoc
// @Summary Список документов
// @Description Возвращает все сохранённые документы
// @Tags Documents
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.AddressDocumentsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	resp, err := h.documentUC.GetAll(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

func isInterrupted(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
