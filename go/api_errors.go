package canteenserver

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/canteen-api/internal/shared/errors"
)

// respondProblem writes a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
	c.Abort()
}

// respondError maps domain failure kinds to problem responses.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	apierrors.DomainResponder.RespondError(c, err)
	c.Abort()
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
