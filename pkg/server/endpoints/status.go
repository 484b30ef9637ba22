package endpoints

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status        string     `json:"status"`
	PolicySHA256  string     `json:"policy_sha256,omitempty"`
	PolicyVersion int        `json:"policy_version,omitempty"`
	PolicySource  string     `json:"policy_source,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Database      string     `json:"database"`
}

// RegisterStatusEndpoints registers the status and metrics endpoints
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/status", handleStatus(s.Policy, s.HealthStore)).Methods("GET")
	s.Router.Handle("/metrics", handleMetrics(s.Registry)).Methods("GET")
}

func handleStatus(holder *policy.Holder, healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{Status: "ok", Database: "disabled"}
		code := http.StatusOK

		if snap := holder.Current(); snap != nil {
			response.PolicySHA256 = snap.SHA256
			response.PolicyVersion = snap.Version
			response.PolicySource = snap.Source
			loadedAt := snap.LoadedAt
			response.LoadedAt = &loadedAt
		} else {
			response.Status = "error"
			code = http.StatusServiceUnavailable
		}

		if healthStore != nil {
			response.Database = "ok"
			if err := healthStore.CheckConnectivity(r.Context()); err != nil {
				response.Status = "error"
				response.Database = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}

		respondWithJSON(w, code, response)
	}
}

func handleMetrics(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
