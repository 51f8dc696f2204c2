package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"goalboard/internal/catalog"
	"goalboard/internal/delay"
	"goalboard/internal/engine"
	"goalboard/internal/nav"
	"goalboard/internal/observability"
	"goalboard/internal/report"
	"goalboard/internal/repo"
	"goalboard/internal/store"
	"goalboard/internal/wizard"
)

// SessionHeader selects the wizard session of a request.
const SessionHeader = "X-Wizard-Session"

// Config for the HTTP API handler.
type Config struct {
	Engine     engine.Engine
	Sessions   *wizard.Sessions
	Report     report.Options
	ExportFile string
	BasePath   string
	Gatherer   prometheus.Gatherer
	Log        *slog.Logger
	// Now is the clock used by delay detection.
	Now func() time.Time
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"initiative not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type handler struct {
	engine     engine.Engine
	sessions   *wizard.Sessions
	report     report.Options
	exportFile string
	now        func() time.Time
	log        *slog.Logger
}

// New returns an HTTP handler exposing the goalboard API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine.Store == nil {
		return nil, errors.New("server: engine store is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	h := &handler{
		engine:     cfg.Engine,
		sessions:   cfg.Sessions,
		report:     cfg.Report,
		exportFile: cfg.ExportFile,
		now:        cfg.Now,
		log:        observability.OrDiscard(cfg.Log),
	}
	if h.sessions == nil {
		h.sessions = wizard.NewSessions()
	}
	if h.exportFile == "" {
		h.exportFile = report.ExportFile
	}
	if h.now == nil {
		h.now = time.Now
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(h.log))
	hcfg := huma.DefaultConfig("Goalboard API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHome(router, basePath)
	registerMetrics(router, cfg.Gatherer)
	registerExport(router, basePath, h)
	registerHealth(group)
	registerCatalog(group)
	registerNavigation(group)
	registerRecords(group, h)
	registerDashboard(group, h)
	registerReports(group, h)
	registerInitiativeWizard(group, h)
	registerProjectWizard(group, h)
	registerSessions(group, h)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, store.ErrDuplicateID):
		return newAPIError(http.StatusConflict, "duplicate_id", err.Error(), nil)
	case errors.Is(err, engine.ErrUnresolvedInitiative), errors.Is(err, store.ErrUnknownInitiative):
		return newAPIError(http.StatusUnprocessableEntity, "unresolved_initiative", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	if strings.Contains(lowered, "invalid") || strings.Contains(lowered, "cannot unmarshal") {
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

// registerHome sends the root path to the dashboard.
func registerHome(r chi.Router, basePath string) {
	r.Get(nav.Home, func(w http.ResponseWriter, r *http.Request) {
		route, _ := nav.Resolve(r.URL.Path)
		http.Redirect(w, r, path.Join(basePath, route.Path), http.StatusFound)
	})
}

func registerMetrics(r chi.Router, g prometheus.Gatherer) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	var errSchema *huma.Schema
	if oas.Components != nil && oas.Components.Schemas != nil {
		errSchema = oas.Components.Schemas.Schema(reflect.TypeOf(apiError{}), true, "ApiError")
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {Schema: errSchema},
				},
			}
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Goalboard API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Wizard calls share state per %s header.
    </p>
  </body>
</html>`, specURL, SessionHeader)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCatalog(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-catalog",
		Method:      http.MethodGet,
		Path:        "/catalog",
		Summary:     "Option lists for every picker",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body CatalogResponse `json:"body"`
	}, error) {
		return &struct {
			Body CatalogResponse `json:"body"`
		}{Body: CatalogResponse{Lists: catalog.All()}}, nil
	})
}

func registerNavigation(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-navigation",
		Method:      http.MethodGet,
		Path:        "/navigation",
		Summary:     "Dashboard routes",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body NavigationResponse `json:"body"`
	}, error) {
		return &struct {
			Body NavigationResponse `json:"body"`
		}{Body: NavigationResponse{Home: nav.Dashboard, Routes: nav.Routes()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-navigation",
		Method:      http.MethodGet,
		Path:        "/navigation/resolve",
		Summary:     "Route matching a dashboard path",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Path string `query:"path" doc:"Dashboard path, e.g. /initiative/123"`
	}) (*struct {
		Body nav.Route `json:"body"`
	}, error) {
		route, ok := nav.Resolve(input.Path)
		if !ok {
			return nil, newAPIError(http.StatusNotFound, "not_found", fmt.Sprintf("no route for %q", input.Path), nil)
		}
		return &struct {
			Body nav.Route `json:"body"`
		}{Body: route}, nil
	})
}

func registerRecords(api huma.API, h *handler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-initiatives",
		Method:      http.MethodGet,
		Path:        "/initiatives",
		Summary:     "List initiatives in creation order",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body InitiativeList `json:"body"`
	}, error) {
		return &struct {
			Body InitiativeList `json:"body"`
		}{Body: InitiativeList{Items: orEmpty(h.engine.Store.Initiatives())}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-initiative",
		Method:      http.MethodGet,
		Path:        "/initiatives/{id}",
		Summary:     "Initiative detail with linked projects and milestone timeline",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body report.Detail `json:"body"`
	}, error) {
		d, ok := report.InitiativeDetail(h.engine.Store.Snapshot(), input.ID)
		if !ok {
			return nil, handleError(fmt.Errorf("initiative %s: %w", input.ID, store.ErrNotFound))
		}
		return &struct {
			Body report.Detail `json:"body"`
		}{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List projects in creation order",
	}, func(ctx context.Context, input *struct {
		InitiativeID string `query:"initiative_id"`
	}) (*struct {
		Body ProjectList `json:"body"`
	}, error) {
		snap := h.engine.Store.Snapshot()
		items := snap.Projects
		if input.InitiativeID != "" {
			items = snap.ProjectsFor(input.InitiativeID)
		}
		return &struct {
			Body ProjectList `json:"body"`
		}{Body: ProjectList{Items: orEmpty(items)}}, nil
	})
}

func registerDashboard(api huma.API, h *handler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Dashboard totals and breakdowns",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body report.Summary `json:"body"`
	}, error) {
		return &struct {
			Body report.Summary `json:"body"`
		}{Body: report.Dashboard(h.engine.Store.Snapshot())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-delays",
		Method:      http.MethodGet,
		Path:        "/delays",
		Summary:     "Overdue milestones",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DelayList `json:"body"`
	}, error) {
		items := delay.Find(h.engine.Store.Snapshot(), h.now())
		return &struct {
			Body DelayList `json:"body"`
		}{Body: DelayList{Items: orEmpty(items)}}, nil
	})
}
