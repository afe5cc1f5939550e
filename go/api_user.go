package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/canteen-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
)

// UserAPI lists accounts for administrators.
type UserAPI struct {
	service userports.Service
}

func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Get /users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.ListUsers(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}
