package service

import (
	"errors"
	"net/http"

	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// mapSeriesError turns series engine failures into API responses. res may be
// nil when the failure happened before any write.
func mapSeriesError(res *recurring.PersistResult, err error) apierror.ErrorResponse {
	var perr *recurring.PersistError
	switch {
	case errors.As(err, &perr):
		log.Errorf("series %s partially persisted (%d/%d): %v", perr.GroupID, perr.Written, perr.Intended, perr.Err)
		resp := &apierror.PartialWriteError{
			Message:  "The series was only partially saved, the listed records were written",
			GroupID:  perr.GroupID.String(),
			Written:  perr.Written,
			Intended: perr.Intended,
			IDs:      []string{},
		}
		if res != nil {
			resp.IDs = res.IDs
		}
		return resp

	case errors.Is(err, recurring.ErrOrphanRisk):
		return apierror.OrphanRiskError
	case errors.Is(err, recurring.ErrInvalidPeriodicity):
		return apierror.InvalidPeriodicityError
	case errors.Is(err, recurring.ErrInvalidDate):
		return apierror.InvalidDateError
	case errors.Is(err, recurring.ErrEmptyGeneration):
		return apierror.EmptyGenerationError
	case errors.Is(err, recurring.ErrInvalidInput):
		return apierror.NewSimple(http.StatusBadRequest, "%s", err.Error())

	default:
		log.Errorf("unmapped series error: %v", err)
		return apierror.InternalServerError
	}
}
