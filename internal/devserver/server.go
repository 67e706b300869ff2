// Package devserver is a local stand-in for the postnow backend. It serves
// the endpoints the wizard calls over SQLite and simulates hosted checkout.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/onboard/internal/api"
	"github.com/verte-zerg/onboard/internal/formstore"
	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/store"
)

const (
	userIDKey       = "userID"
	minPasswordLen  = 8
	idempotencySize = 256
	idempotencyTTL  = 24 * time.Hour
	shutdownTimeout = 5 * time.Second
)

// DefaultPlans are seeded on startup.
var DefaultPlans = []model.Plan{
	{ID: "plan_monthly", Name: "Monthly", Interval: "month", PriceCents: 1900, Active: true},
	{ID: "plan_quarterly", Name: "Quarterly", Interval: "quarter", PriceCents: 4900, Active: true},
	{ID: "plan_yearly", Name: "Yearly", Interval: "year", PriceCents: 16900, Active: true},
	{ID: "plan_monthly_2023", Name: "Monthly (2023)", Interval: "month", PriceCents: 1500, Active: false},
}

// Server wires the backend routes.
type Server struct {
	store      *store.Store
	log        *zap.Logger
	now        func() time.Time
	publicURL  string
	bcryptCost int
	router     *gin.Engine

	checkouts *expirable.LRU[string, model.CheckoutSession]
}

// Option configures a Server.
type Option func(*Server)

// WithPublicURL sets the base URL used in checkout links.
func WithPublicURL(u string) Option {
	return func(s *Server) {
		s.publicURL = strings.TrimRight(u, "/")
	}
}

// WithClock overrides the time source for tracking timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// New builds a Server over st.
func New(st *store.Store, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		store:      st,
		log:        log,
		now:        time.Now,
		publicURL:  "http://localhost:8080",
		bcryptCost: bcrypt.DefaultCost,
		checkouts:  expirable.NewLRU[string, model.CheckoutSession](idempotencySize, nil, idempotencyTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Seed inserts the default plans.
func (s *Server) Seed(ctx context.Context) error {
	if err := s.store.SeedPlans(ctx, DefaultPlans); err != nil {
		return fmt.Errorf("failed to seed plans: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("devserver listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down devserver: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.POST(api.PathRegister, s.register)
	r.POST(api.PathLogin, s.login)
	r.GET(api.PathPlans, s.plans)
	r.GET("/checkout/:id", s.completeCheckout)

	authed := r.Group("/", s.requireAuth())
	authed.GET(api.PathSubscription, s.subscription)
	authed.POST(api.PathCheckout, s.createCheckout)
	authed.GET(api.PathProfile, s.profile)
	authed.POST(api.PathStep1, s.saveSection("business"))
	authed.POST(api.PathStep2, s.saveSection("branding"))
	authed.POST(api.PathTrack, s.track)
	authed.GET(api.PathFunnel, s.funnel)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.store.UserIDForToken(c.Request.Context(), token)
		if errors.Is(err, store.ErrNotFound) {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if err != nil {
			s.internal(c, err)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (s *Server) internal(c *gin.Context, err error) {
	s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	abort(c, http.StatusInternalServerError, "internal error")
}

func (s *Server) register(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if !strings.Contains(creds.Email, "@") {
		abort(c, http.StatusBadRequest, "invalid email")
		return
	}
	if len(creds.Password) < minPasswordLen {
		abort(c, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		s.internal(c, err)
		return
	}
	userID, err := s.store.CreateUser(c.Request.Context(), creds.Email, string(hash))
	if errors.Is(err, store.ErrConflict) {
		abort(c, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	s.issueToken(c, http.StatusCreated, userID)
}

func (s *Server) login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	user, err := s.store.UserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(creds.Email)))
	if errors.Is(err, store.ErrNotFound) {
		abort(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		abort(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.issueToken(c, http.StatusOK, user.ID)
}

func (s *Server) issueToken(c *gin.Context, status int, userID int64) {
	token := uuid.NewString()
	if err := s.store.CreateToken(c.Request.Context(), token, userID); err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(status, model.TokenResponse{Access: token})
}

func (s *Server) subscription(c *gin.Context) {
	sub, err := s.store.Subscription(c.Request.Context(), c.GetInt64(userIDKey))
	if err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) plans(c *gin.Context) {
	plans, err := s.store.ListPlans(c.Request.Context())
	if err != nil {
		s.internal(c, err)
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (s *Server) createCheckout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid body")
		return
	}
	userID := c.GetInt64(userIDKey)
	key := c.GetHeader("Idempotency-Key")
	if key != "" {
		if session, ok := s.checkouts.Get(idempotencyKey(userID, key)); ok {
			c.JSON(http.StatusOK, session)
			return
		}
	}

	plans, err := s.store.ListPlans(c.Request.Context())
	if err != nil {
		s.internal(c, err)
		return
	}
	var plan *model.Plan
	for i := range plans {
		if plans[i].ID == req.PlanID {
			plan = &plans[i]
			break
		}
	}
	if plan == nil || !plan.Active {
		abort(c, http.StatusBadRequest, "plan not available")
		return
	}

	id := "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	rec := store.CheckoutRecord{
		ID:         id,
		UserID:     userID,
		PlanID:     plan.ID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	}
	if err := s.store.CreateCheckout(c.Request.Context(), rec); err != nil {
		s.internal(c, err)
		return
	}
	session := model.CheckoutSession{ID: id, URL: s.publicURL + "/checkout/" + id}
	if key != "" {
		s.checkouts.Add(idempotencyKey(userID, key), session)
	}
	s.log.Info("checkout session created", zap.String("id", id), zap.String("plan", plan.ID))
	c.JSON(http.StatusCreated, session)
}

func idempotencyKey(userID int64, key string) string {
	return strconv.FormatInt(userID, 10) + ":" + key
}

// completeCheckout simulates the hosted payment page: visiting it pays and
// redirects to the success URL. ?cancel=1 redirects to the cancel URL unpaid.
func (s *Server) completeCheckout(c *gin.Context) {
	id := c.Param("id")
	if c.Query("cancel") != "" {
		s.redirectCancel(c, id)
		return
	}
	rec, err := s.store.CompleteCheckout(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.String(http.StatusNotFound, "checkout session not found")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	s.log.Info("checkout completed", zap.String("id", id), zap.Int64("user", rec.UserID))
	if rec.SuccessURL == "" {
		c.String(http.StatusOK, "Payment complete. You can return to the terminal.")
		return
	}
	c.Redirect(http.StatusSeeOther, rec.SuccessURL)
}

func (s *Server) redirectCancel(c *gin.Context, id string) {
	rec, err := s.store.Checkout(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.String(http.StatusNotFound, "checkout session not found")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	if rec.CancelURL == "" {
		c.String(http.StatusOK, "Payment cancelled.")
		return
	}
	c.Redirect(http.StatusSeeOther, rec.CancelURL)
}

func (s *Server) profile(c *gin.Context) {
	business, branding, err := s.store.Profile(c.Request.Context(), c.GetInt64(userIDKey))
	if errors.Is(err, store.ErrNotFound) {
		abort(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		s.internal(c, err)
		return
	}
	var p model.Profile
	if err := json.Unmarshal([]byte(business), &p.BusinessPayload); err != nil {
		s.internal(c, err)
		return
	}
	if err := json.Unmarshal([]byte(branding), &p.BrandingPayload); err != nil {
		s.internal(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) saveSection(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		var err error
		switch section {
		case "business":
			var p model.BusinessPayload
			if err = c.ShouldBindJSON(&p); err == nil {
				if strings.TrimSpace(p.BusinessName) == "" || strings.TrimSpace(p.Specialization) == "" {
					abort(c, http.StatusBadRequest, "business_name and specialization are required")
					return
				}
				body, err = json.Marshal(p)
			}
		default:
			var p model.BrandingPayload
			if err = c.ShouldBindJSON(&p); err == nil {
				body, err = json.Marshal(p)
			}
		}
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid body")
			return
		}
		if err := s.store.SaveProfileSection(c.Request.Context(), c.GetInt64(userIDKey), section, string(body)); err != nil {
			s.internal(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) track(c *gin.Context) {
	var ev model.TrackEvent
	if err := c.ShouldBindJSON(&ev); err != nil || ev.SessionID == "" ||
		ev.StepNumber < formstore.MinStep || ev.StepNumber > formstore.MaxStep {
		abort(c, http.StatusBadRequest, "invalid event")
		return
	}
	if err := s.store.InsertTrackEvent(c.Request.Context(), c.GetInt64(userIDKey), ev, s.now().UnixMilli()); err != nil {
		s.internal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) funnel(c *gin.Context) {
	var filter model.FunnelFilter
	if raw := c.Query("since_ms"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			abort(c, http.StatusBadRequest, "invalid since_ms")
			return
		}
		filter.SinceMs = ms
	}
	counts, err := s.store.StepCounts(c.Request.Context(), filter)
	if err != nil {
		s.internal(c, err)
		return
	}
	if counts == nil {
		counts = []model.StepCount{}
	}
	c.JSON(http.StatusOK, counts)
}
