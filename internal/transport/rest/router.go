package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyhub/internal/metrics"
	"surveyhub/internal/transport/rest/handler"
	"surveyhub/internal/transport/rest/middleware"
	"surveyhub/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	RecordService  handler.RecordService
	SyncService    handler.Syncer
	WSHub          *ws.Hub
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
	Logger         *zap.Logger
}

const indexPage = `<h1>surveyhub</h1>
<p>GET <a href="/v1/data">/v1/data</a> lists every respondent document.</p>
<p>GET /v1/data/{id} returns one respondent document by respondent id.</p>
`

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	recordHandler := handler.NewRecordHandler(c.RecordService)
	syncHandler := handler.NewSyncHandler(c.SyncService)

	r.Use(middleware.CORS(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(c.Logger, c.Metrics))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexPage))
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.MetricsHandler != nil {
		r.Handle("/metrics", c.MetricsHandler).Methods("GET")
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/data", recordHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/data/{id}", recordHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/data/{id}", recordHandler.Update).Methods("PUT", "OPTIONS")
	v1.HandleFunc("/data/{id}", recordHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/data/{id}/validate", recordHandler.Validate).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sync", syncHandler.Sync).Methods("POST", "OPTIONS")

	// subrouter routes share the /v1 prefix matcher, which clears mux's method
	// mismatch state; known paths answer 405 explicitly instead of 404
	for _, path := range []string{"/data", "/data/{id}", "/data/{id}/validate", "/sync"} {
		v1.HandleFunc(path, handler.MethodNotAllowed)
	}

	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, func(req *http.Request) bool {
			origin := req.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(c.AllowedOrigins, origin)
		}, c.Logger)
		v1.HandleFunc("/ws/records", wsHandler.RecordsWS).Methods("GET")
	}

	// unversioned read routes kept for existing clients
	r.HandleFunc("/data", recordHandler.List).Methods("GET")
	r.HandleFunc("/data/{id}", recordHandler.Get).Methods("GET")

	return r
}
