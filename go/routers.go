// Package groomingserver is the HTTP surface of the grooming marketplace orchestrator.
package groomingserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	checkoutmapper "github.com/tropicbliss/ESD-Project/internal/domains/checkout/adapters/http/mapper"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups every handler the router serves.
type ApiHandleFunctions struct {
	CheckoutAPI CheckoutAPI
	UserAPI     UserAPI
	GroomerAPI  GroomerAPI
	BookingAPI  BookingAPI
}

type routerSettings struct {
	origins    []string
	middleware []gin.HandlerFunc
}

// RouterOption customises the engine before routes are registered.
type RouterOption func(*routerSettings)

// WithMiddleware installs middleware ahead of every route.
func WithMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(s *routerSettings) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithAllowedOrigins restricts CORS to origins; empty keeps the wildcard.
func WithAllowedOrigins(origins []string) RouterOption {
	return func(s *routerSettings) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// NewRouter returns a gin engine with CORS, a health probe and every API route.
func NewRouter(handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	settings := routerSettings{origins: []string{"*"}}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  settings.origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", checkoutmapper.IdempotencyKeyHeader},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(settings.middleware...)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes that have no handler wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"CreateUser", http.MethodPost, "/user/create", h.UserAPI.CreateUser},
		{"GetUser", http.MethodGet, "/user/read/:name", h.UserAPI.GetUser},
		{"UpdateUser", http.MethodPost, "/user/update/:name", h.UserAPI.UpdateUser},

		{"CreateGroomer", http.MethodPost, "/groomer/create", h.GroomerAPI.CreateGroomer},
		{"SearchGroomers", http.MethodGet, "/groomer/search/keyword/:keyword", h.GroomerAPI.SearchGroomers},
		{"GetGroomer", http.MethodGet, "/groomer/search/name/:name", h.GroomerAPI.GetGroomer},
		{"UpdateGroomer", http.MethodPost, "/groomer/update/:name", h.GroomerAPI.UpdateGroomer},
		{"ListGroomers", http.MethodPost, "/groomer/read", h.GroomerAPI.ListGroomers},
		{"Accepts", http.MethodPost, "/groomer/accepts/:name", h.GroomerAPI.Accepts},

		{"FutureCapacity", http.MethodGet, "/capacity/check/:groomer_name", h.BookingAPI.FutureCapacity},
		{"Comments", http.MethodGet, "/comments/read/:groomer_name", h.BookingAPI.Comments},
		{"UserAppointments", http.MethodGet, "/appointments/user/:user_name", h.BookingAPI.UserAppointments},
		{"ArrivingCustomers", http.MethodGet, "/appointments/signin/:groomer_name", h.BookingAPI.ArrivingCustomers},
		{"StayingCustomers", http.MethodGet, "/appointments/staying/:groomer_name", h.BookingAPI.StayingCustomers},
		{"ChangeStatus", http.MethodPost, "/appointments/status/:id", h.BookingAPI.ChangeStatus},

		{"Checkout", http.MethodPost, "/checkout", h.CheckoutAPI.Checkout},
		{"Refund", http.MethodPost, "/refund", h.CheckoutAPI.Refund},
		{"GetSaga", http.MethodGet, "/sagas/:id", h.CheckoutAPI.GetSaga},
		{"ListSagas", http.MethodGet, "/sagas", h.CheckoutAPI.ListSagas},
	}
}
