package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/permission"
	"github.com/miguelmarques1/church-web/pkg/policy"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// PolicyResponse describes the policy currently enforced.
type PolicyResponse struct {
	Version  int       `json:"version"`
	SHA256   string    `json:"sha256"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// PolicyVersionResponse is one entry of the policy history.
type PolicyVersionResponse struct {
	Version      int       `json:"version"`
	PolicySHA256 string    `json:"policy_sha256"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	PolicyText   string    `json:"policy_text,omitempty"`
}

// RegisterPoliciesEndpoints registers the policy inspection endpoints. They
// are limited to roles that may read settings.
func RegisterPoliciesEndpoints(s *server.Server) {
	jwtMiddleware := middleware.NewJWTAuthenticator(s.Authenticator)

	policyRouter := s.Router.PathPrefix("/policy").Subrouter()
	policyRouter.Use(jwtMiddleware.Middleware)
	policyRouter.Use(middleware.Require(s.Policy, permission.ResourceSettings, permission.ActionRead))

	policyRouter.HandleFunc("", handleCurrentPolicy(s.Policy)).Methods("GET")
	if s.PolicyStore != nil {
		policyRouter.HandleFunc("/versions", handleListPolicyVersions(s.PolicyStore, s.Logger)).Methods("GET")
		policyRouter.HandleFunc("/versions/{version:[0-9]+}", handleGetPolicyVersion(s.PolicyStore, s.Logger)).Methods("GET")
	}
}

func handleCurrentPolicy(holder *policy.Holder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := holder.Current()
		if snap == nil {
			respondWithError(w, http.StatusServiceUnavailable, "no permission policy loaded")
			return
		}
		respondWithJSON(w, http.StatusOK, PolicyResponse{
			Version:  snap.Version,
			SHA256:   snap.SHA256,
			Source:   snap.Source,
			LoadedAt: snap.LoadedAt,
		})
	}
}

func handleListPolicyVersions(policyStore store.PolicyStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		versions, err := policyStore.ListPolicyVersions()
		if err != nil {
			logger.Error("Failed to list policy versions", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to list policy versions")
			return
		}

		response := make([]PolicyVersionResponse, 0, len(versions))
		for _, v := range versions {
			response = append(response, PolicyVersionResponse{
				Version:      v.Version,
				PolicySHA256: v.PolicySHA256,
				Source:       v.Source,
				CreatedAt:    v.CreatedAt,
			})
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}

func handleGetPolicyVersion(policyStore store.PolicyStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version, err := strconv.Atoi(mux.Vars(r)["version"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid version")
			return
		}

		v, err := policyStore.GetPolicyVersion(version)
		if err != nil {
			if errors.Is(err, store.ErrPolicyVersionNotFound) {
				respondWithError(w, http.StatusNotFound, "policy version not found")
				return
			}
			logger.Error("Failed to fetch policy version", zap.Int("version", version), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to fetch policy version")
			return
		}

		respondWithJSON(w, http.StatusOK, PolicyVersionResponse{
			Version:      v.Version,
			PolicySHA256: v.PolicySHA256,
			Source:       v.Source,
			CreatedAt:    v.CreatedAt,
			PolicyText:   v.PolicyText,
		})
	}
}
