// Package canteenserver exposes the canteen use cases over HTTP with gin.
package canteenserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access describes who may call a route.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access selects the authentication middleware chain.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups every API the router serves.
type ApiHandleFunctions struct {
	AuthAPI    AuthAPI
	ProductAPI ProductAPI
	CartAPI    CartAPI
	OrderAPI   OrderAPI
	PaymentAPI PaymentAPI
	UserAPI    UserAPI
	HealthAPI  HealthAPI
}

// NewRouter returns a new router with every route registered.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine registers the routes on an existing engine.
// Middleware is installed before the routes so it wraps every handler.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router.Use(middleware...)
	auth := handleFunctions.AuthAPI
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := make([]gin.HandlerFunc, 0, 3)
		switch route.Access {
		case Authenticated:
			chain = append(chain, auth.RequireCaller)
		case AdminOnly:
			chain = append(chain, auth.RequireCaller, RequireAdmin)
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"SignUp", http.MethodPost, "/signup", Public, h.AuthAPI.SignUp},
		{"SignIn", http.MethodPost, "/signin", Public, h.AuthAPI.SignIn},
		{"AdminSignUp", http.MethodPost, "/admin_signup", Public, h.AuthAPI.AdminSignUp},
		{"SignOut", http.MethodPost, "/signout", Authenticated, h.AuthAPI.SignOut},

		{"ListProducts", http.MethodGet, "/products", Public, h.ProductAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/products/:id", Public, h.ProductAPI.GetProduct},
		{"CreateProduct", http.MethodPost, "/products", AdminOnly, h.ProductAPI.CreateProduct},
		{"UpdateProduct", http.MethodPut, "/products/:id", AdminOnly, h.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/products/:id", AdminOnly, h.ProductAPI.DeleteProduct},

		{"GetCart", http.MethodGet, "/cart", Authenticated, h.CartAPI.GetCart},
		{"CreateCart", http.MethodPost, "/cart", Authenticated, h.CartAPI.GetCart},
		{"AddToCart", http.MethodPost, "/cart/add", Authenticated, h.CartAPI.AddItem},
		{"UpdateCartItem", http.MethodPost, "/cart/update", Authenticated, h.CartAPI.UpdateItem},
		{"RemoveFromCart", http.MethodPost, "/cart/remove", Authenticated, h.CartAPI.RemoveItem},
		{"ClearCart", http.MethodPost, "/cart/clear", Authenticated, h.CartAPI.ClearCart},
		{"Checkout", http.MethodPost, "/cart/checkout", Authenticated, h.CartAPI.Checkout},

		{"ListOrders", http.MethodGet, "/orders", Authenticated, h.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/orders/:id", Authenticated, h.OrderAPI.GetOrder},
		{"CreateOrder", http.MethodPost, "/orders", AdminOnly, h.OrderAPI.CreateOrder},
		{"UpdateOrder", http.MethodPut, "/orders/:id", AdminOnly, h.OrderAPI.UpdateOrder},
		{"UpdateOrderPost", http.MethodPost, "/orders/:id", AdminOnly, h.OrderAPI.UpdateOrder},
		{"DeleteOrder", http.MethodDelete, "/orders/:id", AdminOnly, h.OrderAPI.DeleteOrder},

		{"CreatePayment", http.MethodPost, "/payments", Authenticated, h.PaymentAPI.CreatePayment},
		{"GetPaymentByOrder", http.MethodGet, "/payments/order/:id", Authenticated, h.PaymentAPI.GetPaymentByOrder},
		{"UpdatePayment", http.MethodPut, "/payments/:id", Authenticated, h.PaymentAPI.UpdatePayment},

		{"ListUsers", http.MethodGet, "/users", AdminOnly, h.UserAPI.ListUsers},

		{"Health", http.MethodGet, "/health", Public, h.HealthAPI.Health},
	}
}
