package canteenserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/canteen-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/canteen-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/canteen-api/internal/shared/errors"
	"github.com/Apurer/canteen-api/internal/shared/principal"
)

const (
	callerKey = "canteen.caller"
	tokenKey  = "canteen.token"
)

// AuthAPI handles account creation, sign-in and bearer authentication.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /signup
func (api *AuthAPI) SignUp(c *gin.Context) {
	var payload userhttpmapper.SignUpRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.SignUp(c.Request.Context(), userhttpmapper.ToSignUpInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromAuthResult(result))
}

// Post /signin
func (api *AuthAPI) SignIn(c *gin.Context) {
	var payload userhttpmapper.SignInRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.SignIn(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromAuthResult(result))
}

// Post /admin_signup
func (api *AuthAPI) AdminSignUp(c *gin.Context) {
	var payload userhttpmapper.AdminSignUpRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.AdminSignUp(c.Request.Context(), userhttpmapper.ToAdminSignUpInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromAuthResult(result))
}

// Post /signout
func (api *AuthAPI) SignOut(c *gin.Context) {
	if err := api.service.SignOut(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// RequireCaller resolves the bearer token and stores the caller on the context.
func (api *AuthAPI) RequireCaller(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("missing bearer token"))
		return
	}
	caller, err := api.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(callerKey, caller)
	c.Set(tokenKey, token)
	c.Next()
}

// RequireAdmin rejects callers without the admin role. It must run after RequireCaller.
func RequireAdmin(c *gin.Context) {
	if !callerFrom(c).IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("admin access required"))
		return
	}
	c.Next()
}

func callerFrom(c *gin.Context) principal.Principal {
	value, ok := c.Get(callerKey)
	if !ok {
		return principal.Principal{}
	}
	caller, _ := value.(principal.Principal)
	return caller
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
