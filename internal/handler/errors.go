package handler

import (
	"context"
	"errors"
	"net/http"

	appI18n "github.com/pavelanni/pathfinder/internal/i18n"
	"github.com/pavelanni/pathfinder/internal/llm"
	"github.com/pavelanni/pathfinder/internal/normalize"
	"github.com/pavelanni/pathfinder/internal/pathfinder"
	"github.com/pavelanni/pathfinder/internal/session"
)

var errBadRequest = errors.New("bad request")

// Error kinds reported to clients.
const (
	KindConfiguration = "configuration"
	KindGateway       = "gateway"
	KindShape         = "shape"
	KindParse         = "parse"
	KindPrecondition  = "precondition"
	KindInput         = "input"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

// describe maps an error to an HTTP status and a localized message.
func describe(ctx context.Context, err error) (int, errorBody) {
	var (
		gwErr    *llm.GatewayError
		shapeErr *normalize.ShapeError
		parseErr *normalize.ParseError
		preErr   *session.PreconditionError
	)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorBody{KindConfiguration, appI18n.T(ctx, "ErrNotConfigured")}
	case errors.As(err, &gwErr):
		if gwErr.InvalidKey {
			return http.StatusBadGateway, errorBody{KindGateway, appI18n.T(ctx, "ErrInvalidKey")}
		}
		return http.StatusBadGateway, errorBody{KindGateway,
			appI18n.Td(ctx, "ErrGateway", map[string]any{"Detail": gwErr.Err.Error()})}
	case errors.As(err, &shapeErr):
		return http.StatusBadGateway, errorBody{KindShape,
			appI18n.Td(ctx, "ErrShape", map[string]any{"Entity": shapeErr.Entity})}
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, errorBody{KindParse,
			appI18n.Td(ctx, "ErrParse", map[string]any{"Entity": parseErr.Entity})}
	case errors.As(err, &preErr):
		return http.StatusConflict, errorBody{KindPrecondition, appI18n.T(ctx, preconditionMessage(preErr))}
	case errors.Is(err, pathfinder.ErrEmptyQuery):
		return http.StatusBadRequest, errorBody{KindInput, appI18n.T(ctx, "ErrEmptyQuery")}
	case errors.Is(err, pathfinder.ErrChecklistIndex):
		return http.StatusNotFound, errorBody{KindNotFound, appI18n.T(ctx, "ErrChecklistIndex")}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorBody{KindInput, appI18n.T(ctx, "ErrBadRequest")}
	default:
		return http.StatusInternalServerError, errorBody{KindInternal, appI18n.T(ctx, "ErrUnknown")}
	}
}

func preconditionMessage(err *session.PreconditionError) string {
	switch {
	case err.Op == session.OpReport && err.Reason != session.ReasonNoPackage:
		return "ErrReportPrecondition"
	case err.Op == session.OpSubmitExam && err.Reason == session.ReasonNoExam:
		return "ErrNoExam"
	default:
		return "ErrNoPackage"
	}
}
