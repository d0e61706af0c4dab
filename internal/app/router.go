package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	managerhttp "github.com/odyssey-erp/auxmanager/internal/manager/http"
	"github.com/odyssey-erp/auxmanager/internal/observability"
	"github.com/odyssey-erp/auxmanager/internal/shared"
	"github.com/odyssey-erp/auxmanager/internal/view"
	"github.com/odyssey-erp/auxmanager/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	ManagerHandler *managerhttp.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router for the manager service.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(params.Metrics.Middleware)

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", params.Metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.RequestSession(r)
		csrfToken, _ := params.CSRFManager.Token(sess)
		data := view.TemplateData{
			Title:       "Records",
			CSRFToken:   csrfToken,
			CurrentPath: r.URL.Path,
			Data: map[string]any{
				"Page": r.URL.Query().Get("page"),
			},
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Route("/manager", params.ManagerHandler.MountRoutes)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers cache static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
