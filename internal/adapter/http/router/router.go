package router

import "net/http"

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

func New(
	customerController RouteRegistrar,
	accountController RouteRegistrar,
	transferController RouteRegistrar,
	loanController RouteRegistrar,
	recurringController RouteRegistrar,
	authMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	for _, registrar := range []RouteRegistrar{
		customerController,
		accountController,
		transferController,
		loanController,
		recurringController,
	} {
		if registrar != nil {
			registrar.RegisterRoutes(mux, authMiddleware)
		}
	}

	return mux
}
