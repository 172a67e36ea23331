package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/progression"
	"github.com/vytor/codetrail/internal/services"
)

// Server holds the dependencies shared by every HTTP handler.
type Server struct {
	DB                 Pinger
	ChallengeService   services.ChallengeService
	ActivityService    services.ActivityService
	ProgressionService progression.Service

	verifyLimiter *ipRateLimiter
}

// ServerOption configures optional Server behaviour.
type ServerOption func(*Server)

// WithVerifyRateLimit limits verification requests per client address.
// perSecond <= 0 disables the limit.
func WithVerifyRateLimit(perSecond float64, burst int) ServerOption {
	return func(s *Server) {
		if perSecond <= 0 {
			s.verifyLimiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.verifyLimiter = newIPRateLimiter(rate.Limit(perSecond), burst)
	}
}

// NewServer creates a new Server
func NewServer(db Pinger, challenges services.ChallengeService, activity services.ActivityService, prog progression.Service, opts ...ServerOption) *Server {
	s := &Server{
		DB:                 db,
		ChallengeService:   challenges,
		ActivityService:    activity,
		ProgressionService: prog,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handleError(w, r, errors.NewNotFoundError("route", r.Method+" "+r.URL.Path))
}
