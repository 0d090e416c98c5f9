package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"happi-app-go/internal/config"
	"happi-app-go/internal/metrics"
	"happi-app-go/internal/transport/httpserver/handler"
	authmw "happi-app-go/internal/transport/httpserver/middleware"
	"happi-app-go/pkg/logger"
)

type RouterDeps struct {
	Handlers *handler.Handlers
	Auth     *authmw.SessionAuth
	Metrics  *metrics.Registry
	Log      logger.Logger
	// StorageRoot is served under /storage when images live on local disk.
	StorageRoot string
}

func NewRouter(cfg config.Config, deps RouterDeps) http.Handler {
	h := deps.Handlers

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(authmw.RequestLogger(deps.Log))
	r.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(authmw.NewCORS(cfg.CORS))

	r.Get("/health", h.Common.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	if deps.StorageRoot != "" {
		prefix := "/" + strings.Trim(cfg.Storage.PublicBaseURL, "/")
		if prefix == "/" {
			prefix = "/storage"
		}
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(deps.StorageRoot)))
		r.Method(http.MethodGet, prefix+"/*", files)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	r.Get("/login", h.Auth.LoginPage)
	r.Post("/login", h.Auth.Login)
	r.Get("/register", h.Auth.RegisterPage)
	r.Post("/register", h.Auth.Register)
	r.Post("/logout", h.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Optional)
		r.Get("/family/join/{token}", h.Family.Join)
		r.Post("/family/accept/{token}", h.Family.Accept)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Require)

		r.Get("/dashboard", h.Dashboard.Dashboard)

		r.Route("/insurance", func(r chi.Router) {
			r.Get("/", h.Insurance.Index)
			r.Get("/category/{slug}", h.Insurance.Category)
			r.Get("/product/{id}", h.Insurance.Product)
			r.Get("/checkout/{id}", h.Insurance.Checkout)
			r.Post("/purchase", h.Insurance.Purchase)
			r.Get("/renew/{id}", h.Insurance.RenewPage)
			r.Post("/renew/{id}", h.Insurance.Renew)
		})

		r.Route("/membership", func(r chi.Router) {
			r.Get("/", h.Membership.Plans)
			r.Get("/checkout/{tier}", h.Membership.Checkout)
			r.Post("/purchase", h.Membership.Purchase)
			r.Get("/{tier}", h.Membership.Details)
		})

		r.Get("/profile", h.Profile.Index)
		r.Get("/profile/edit", h.Profile.Edit)
		r.Patch("/profile", h.Profile.Update)
		r.Delete("/profile", h.Profile.Destroy)
		r.Get("/transactions", h.Profile.Transactions)
		r.Get("/coins", h.Profile.Coins)

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", h.Vehicles.Index)
			r.Get("/add", h.Vehicles.CreatePage)
			r.Post("/", h.Vehicles.Store)
			r.Get("/{id}", h.Vehicles.Show)
			r.Get("/{id}/edit", h.Vehicles.Edit)
			r.Put("/{id}", h.Vehicles.Update)
			r.Delete("/{id}", h.Vehicles.Destroy)
		})

		r.Route("/family", func(r chi.Router) {
			r.Get("/", h.Family.Index)
			r.Get("/create", h.Family.CreatePage)
			r.Post("/", h.Family.Store)
			r.Get("/invite", h.Family.InvitePage)
			r.Post("/invite", h.Family.Invite)
			r.Delete("/invitation/{id}", h.Family.CancelInvitation)
			r.Put("/members/{id}", h.Family.UpdateMember)
			r.Delete("/members/{id}", h.Family.RemoveMember)
			r.Get("/{id}", h.Family.Show)
		})

		r.Get("/notifications", h.Dashboard.ListNotifications)
		r.Put("/notifications/read-all", h.Dashboard.MarkAllRead)
		r.Put("/notifications/{id}/read", h.Dashboard.MarkRead)
	})

	return r
}
