package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Bookings     *BookingHandler
	Availability *AvailabilityHandler
	Resources    *ResourceHandler
	FloorMaps    *FloorMapHandler
	Users        *UserHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	if cfg.Bookings != nil {
		router.HandleFunc("/bookings", cfg.Bookings.Create).Methods(http.MethodPost)
		router.HandleFunc("/bookings", cfg.Bookings.List).Methods(http.MethodGet)
		router.HandleFunc("/bookings/{id}", cfg.Bookings.Delete).Methods(http.MethodDelete)
	}

	if cfg.Availability != nil {
		router.HandleFunc("/resources/{id}/availability", cfg.Availability.Get).Methods(http.MethodGet)
		router.HandleFunc("/desk-eligibility", cfg.Availability.CanBookDesk).Methods(http.MethodGet)
	}

	if cfg.Resources != nil {
		router.HandleFunc("/resources", cfg.Resources.Create).Methods(http.MethodPost)
		router.HandleFunc("/resources/{id}", cfg.Resources.Update).Methods(http.MethodPut)
		router.HandleFunc("/resources/{id}", cfg.Resources.Delete).Methods(http.MethodDelete)
	}

	if cfg.FloorMaps != nil {
		router.HandleFunc("/maps", cfg.FloorMaps.List).Methods(http.MethodGet)
		router.HandleFunc("/maps", cfg.FloorMaps.Create).Methods(http.MethodPost)
		router.HandleFunc("/maps/{id}", cfg.FloorMaps.Update).Methods(http.MethodPut)
		router.HandleFunc("/maps/{id}", cfg.FloorMaps.Delete).Methods(http.MethodDelete)
		if cfg.Resources != nil {
			router.HandleFunc("/maps/{id}/resources", cfg.Resources.ListForMap).Methods(http.MethodGet)
		}
	}

	if cfg.Users != nil {
		router.HandleFunc("/users", cfg.Users.List).Methods(http.MethodGet)
		router.HandleFunc("/users", cfg.Users.Create).Methods(http.MethodPost)
		router.HandleFunc("/users/{id}", cfg.Users.Update).Methods(http.MethodPut)
		router.HandleFunc("/users/{id}", cfg.Users.Delete).Methods(http.MethodDelete)
	}

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
