package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/probelab/probectl/internal/auth"
	"github.com/probelab/probectl/internal/observability"
)

// Admin serves the operational surface next to the datagram socket:
// liveness, readiness, and prometheus metrics. A non-empty token puts the
// metrics route behind bearer auth; the probe routes stay open.
type Admin struct {
	name    string
	addr    string
	started time.Time
	router  *gin.Engine
	srv     *http.Server
}

func NewAdmin(name, addr, token string, logger zerolog.Logger) *Admin {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	a := &Admin{
		name:    name,
		addr:    addr,
		started: time.Now(),
		router:  r,
	}
	a.registerRoutes(token)
	return a
}

func (a *Admin) registerRoutes(token string) {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(a.started).String(),
			"agent":  a.name,
		})
	})

	a.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"uptime": time.Since(a.started).String(),
			"agent":  a.name,
		})
	})

	metrics := gin.WrapH(promhttp.Handler())
	if token != "" {
		a.router.GET("/metrics", requireToken(auth.StaticToken{Token: token}), metrics)
	} else {
		a.router.GET("/metrics", metrics)
	}
}

// requireToken gates a route on an Authorization bearer token.
func requireToken(v auth.Validator) gin.HandlerFunc {
	const prefix = "Bearer "
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) ||
			v.Validate(strings.TrimPrefix(header, prefix)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// Router exposes the admin routes for handler-level tests.
func (a *Admin) Router() *gin.Engine {
	return a.router
}

// Serve blocks until ctx cancellation, then drains in-flight requests with a
// short deadline.
func (a *Admin) Serve(ctx context.Context) error {
	a.srv = &http.Server{Addr: a.addr, Handler: a.router}

	errc := make(chan error, 1)
	go func() { errc <- a.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("agent: admin serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return multierr.Combine(a.srv.Shutdown(shutdownCtx), ignoreServerClosed(<-errc))
}

func ignoreServerClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
