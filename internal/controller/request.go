package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/lifecycle"
	"sales-request-api/internal/service"
)

type requestRoutesHandler struct {
	requestService service.Request
	validate       *validator.Validate
}

func newRequestRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *requestRoutesHandler {
	h := &requestRoutesHandler{requestService: services.Request, validate: v}

	outer.GET("/requests", h.GetRequests)
	outer.POST("/requests/new", h.PostRequest)
	outer.GET("/requests/:requestId", h.GetRequest)
	outer.PATCH("/requests/:requestId/salesperson", h.UpdateSalesperson)
	outer.PUT("/requests/:requestId/contact", h.UpdateContact)
	outer.PATCH("/requests/:requestId/comment", h.UpdateComment)
	outer.POST("/requests/:requestId/line-items", h.AddLineItem)
	outer.PUT("/requests/:requestId/line-items", h.ReplaceLineItems)
	outer.DELETE("/requests/:requestId/line-items/:lineItemId", h.RemoveLineItem)
	outer.GET("/requests/:requestId/validation", h.GetValidation)
	outer.POST("/requests/:requestId/submit", h.SubmitRequest)
	outer.GET("/requests/:requestId/submissions", h.GetSubmissions)
	outer.DELETE("/requests/:requestId", h.DeleteRequest)

	return h
}

type listRequestsInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=50"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

func newListRequestsInput() listRequestsInput {
	return listRequestsInput{Limit: defaultLimit, Offset: defaultOffset}
}

// /requests
func (h *requestRoutesHandler) GetRequests(c echo.Context) error {
	var input = newListRequestsInput()
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	requests, err := h.requestService.ListRequests(c.Request().Context(), pg)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, requests)
}

type postRequestInput struct {
	SalespersonFirstName string `json:"salespersonFirstName" validate:"max=100"`
	SalespersonSelection string `json:"salespersonSelection" validate:"max=100"`
}

// /requests/new
func (h *requestRoutesHandler) PostRequest(c echo.Context) error {
	var input postRequestInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	request, err := h.requestService.CreateRequest(c.Request().Context(), &entity.CreateRequestInput{
		SalespersonFirstName: input.SalespersonFirstName,
		SalespersonSelection: input.SalespersonSelection,
	})
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, request)
}

// /requests/:requestId
func (h *requestRoutesHandler) GetRequest(c echo.Context) error {
	request, err := h.requestService.GetRequestById(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

// /requests/:requestId/salesperson
func (h *requestRoutesHandler) UpdateSalesperson(c echo.Context) error {
	var input postRequestInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	request, err := h.requestService.UpdateSalesperson(c.Request().Context(), c.Param("requestId"),
		input.SalespersonFirstName, input.SalespersonSelection)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

type putContactInput struct {
	PersonId  int    `json:"personId" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=200"`
	MineGroup string `json:"mineGroup" validate:"required,max=200"`
	MineName  string `json:"mineName" validate:"required,max=200"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=50"`
	JobTitle  string `json:"jobTitle" validate:"max=200"`
}

// /requests/:requestId/contact
func (h *requestRoutesHandler) UpdateContact(c echo.Context) error {
	var input putContactInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	contact := &entity.Contact{
		PersonId:  input.PersonId,
		Name:      input.Name,
		MineGroup: input.MineGroup,
		MineName:  input.MineName,
		Email:     input.Email,
		Phone:     input.Phone,
		JobTitle:  input.JobTitle,
	}

	request, err := h.requestService.UpdateContact(c.Request().Context(), c.Param("requestId"), contact)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

type patchCommentInput struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// /requests/:requestId/comment
func (h *requestRoutesHandler) UpdateComment(c echo.Context) error {
	var input patchCommentInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	request, err := h.requestService.UpdateComment(c.Request().Context(), c.Param("requestId"), input.Comment)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

type lineItemInput struct {
	ProductId        int     `json:"productId" validate:"required,gt=0"`
	Name             string  `json:"name" validate:"required,max=300"`
	Code             string  `json:"code" validate:"max=100"`
	Category         string  `json:"category" validate:"max=200"`
	Quantity         int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice        float64 `json:"unitPrice" validate:"gte=0"`
	TotalPrice       float64 `json:"totalPrice" validate:"gte=0"`
	ShortDescription string  `json:"shortDescription" validate:"max=500"`
}

func (in *lineItemInput) toEntity() entity.LineItem {
	item := entity.LineItem{
		ProductId:        in.ProductId,
		Name:             in.Name,
		Code:             in.Code,
		Category:         in.Category,
		Quantity:         in.Quantity,
		UnitPrice:        in.UnitPrice,
		TotalPrice:       in.TotalPrice,
		ShortDescription: in.ShortDescription,
	}
	if item.TotalPrice == 0 {
		item.TotalPrice = item.UnitPrice * float64(item.Quantity)
	}

	return item
}

// /requests/:requestId/line-items (POST)
func (h *requestRoutesHandler) AddLineItem(c echo.Context) error {
	var input lineItemInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	item := input.toEntity()
	request, err := h.requestService.AddLineItem(c.Request().Context(), c.Param("requestId"), &item)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

type replaceLineItemsInput struct {
	LineItems []lineItemInput `json:"lineItems" validate:"dive"`
}

// /requests/:requestId/line-items (PUT)
func (h *requestRoutesHandler) ReplaceLineItems(c echo.Context) error {
	var input replaceLineItemsInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	items := make([]entity.LineItem, 0, len(input.LineItems))
	for i := range input.LineItems {
		items = append(items, input.LineItems[i].toEntity())
	}

	request, err := h.requestService.ReplaceLineItems(c.Request().Context(), c.Param("requestId"), items)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

// /requests/:requestId/line-items/:lineItemId
func (h *requestRoutesHandler) RemoveLineItem(c echo.Context) error {
	lineItemId, err := strconv.Atoi(c.Param("lineItemId"))
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Line item id must be an integer"}); e != nil {
			return e
		}

		return err
	}

	request, err := h.requestService.RemoveLineItem(c.Request().Context(), c.Param("requestId"), lineItemId)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, request)
}

// /requests/:requestId/validation
func (h *requestRoutesHandler) GetValidation(c echo.Context) error {
	validation, err := h.requestService.ValidateRequest(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, validation)
}

type submitErrorResponse struct {
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// /requests/:requestId/submit
func (h *requestRoutesHandler) SubmitRequest(c echo.Context) error {
	request, err := h.requestService.SubmitRequest(c.Request().Context(), c.Param("requestId"))
	if err == nil {
		return c.JSON(http.StatusOK, request)
	}

	var se *lifecycle.SubmitError
	if errors.As(err, &se) {
		if se.Kind == lifecycle.KindValidation {
			if e := c.JSON(http.StatusUnprocessableEntity, submitErrorResponse{Reason: se.Message, Retryable: false}); e != nil {
				return e
			}

			return nil
		}

		if e := c.JSON(http.StatusBadGateway, submitErrorResponse{Reason: se.Error(), Retryable: se.Retryable}); e != nil {
			return e
		}

		return nil
	}

	return h.writeServiceError(c, err)
}

// /requests/:requestId/submissions
func (h *requestRoutesHandler) GetSubmissions(c echo.Context) error {
	var input = newListRequestsInput()
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	entries, err := h.requestService.GetSubmissionLog(c.Request().Context(), c.Param("requestId"), pg)
	if err != nil {
		return h.writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}

// /requests/:requestId (DELETE)
func (h *requestRoutesHandler) DeleteRequest(c echo.Context) error {
	if err := h.requestService.DeleteRequest(c.Request().Context(), c.Param("requestId")); err != nil {
		return h.writeServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *requestRoutesHandler) writeServiceError(c echo.Context, err error) error {
	var shapeErr *entity.ShapeError

	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no request with given id"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrLineItemNotFound):
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no line item with given id on this request"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrRequestSubmitted):
		if e := c.JSON(http.StatusConflict, errorResponse{"Submitted requests can no longer be edited"}); e != nil {
			return e
		}
	case errors.Is(err, service.ErrRequestNotDraft):
		if e := c.JSON(http.StatusConflict, errorResponse{"Only draft requests can be deleted"}); e != nil {
			return e
		}
	case errors.As(err, &shapeErr):
		if e := c.JSON(http.StatusBadRequest, errorResponse{shapeErr.Error()}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusInternalServerError, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return nil
}
