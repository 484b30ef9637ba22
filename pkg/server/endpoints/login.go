package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/authn"
	"github.com/miguelmarques1/church-web/pkg/server"
	"github.com/miguelmarques1/church-web/pkg/server/middleware"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Envelope is the response shape the web client's API layer unwraps.
type Envelope struct {
	Data    interface{} `json:"data"`
	Error   bool        `json:"error"`
	Message *string     `json:"message"`
}

// LoginData is the data of a successful login.
type LoginData struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        LoginUser `json:"user"`
}

// LoginUser mirrors the client's User type.
type LoginUser struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email string    `json:"email,omitempty"`
	Role  LoginRole `json:"role"`
}

// LoginRole carries the role credentials the client checks permissions with.
type LoginRole struct {
	Name        string `json:"name"`
	Credentials string `json:"credentials"`
}

// Authenticator logs users in.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (*authn.Session, error)
}

// RegisterLoginEndpoint registers POST /login
func RegisterLoginEndpoint(s *server.Server) {
	s.Router.HandleFunc("/login", handleLogin(s.Authenticator, s.Audit, s.Metrics, s.Logger)).Methods("POST")
}

func handleLogin(authenticator Authenticator, auditLogger *audit.Logger, metrics *server.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := middleware.RemoteIP(r).String()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithEnvelopeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		session, err := authenticator.Login(r.Context(), req.Phone, req.Password)
		if err != nil {
			if metrics != nil {
				metrics.Logins.WithLabelValues("failure").Inc()
			}
			if errors.Is(err, authn.ErrInvalidCredentials) {
				auditLogger.Log(audit.LoginEvent{
					Phone:        req.Phone,
					ClientIP:     clientIP,
					Success:      false,
					ErrorMessage: err.Error(),
				})
				respondWithEnvelopeError(w, http.StatusUnauthorized, "Telefone ou senha inválidos")
				return
			}
			logger.Error("Login failed", zap.String("phone", req.Phone), zap.Error(err))
			respondWithEnvelopeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if metrics != nil {
			metrics.Logins.WithLabelValues("success").Inc()
		}
		user := session.User
		auditLogger.Log(audit.LoginEvent{
			UserID:   strconv.FormatInt(user.ID, 10),
			Phone:    user.Phone,
			Role:     user.Role,
			ClientIP: clientIP,
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, Envelope{
			Data: LoginData{
				AccessToken: session.AccessToken,
				ExpiresAt:   session.ExpiresAt,
				User: LoginUser{
					ID:    user.ID,
					Name:  user.Name,
					Phone: user.Phone,
					Email: user.Email,
					Role:  LoginRole{Name: user.Role, Credentials: user.Role},
				},
			},
		})
	}
}

func respondWithEnvelopeError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, Envelope{Error: true, Message: &message})
}
