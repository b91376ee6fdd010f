package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"agadeepaoli/internal/config"
	appmiddleware "agadeepaoli/internal/middleware"
	httprouters "agadeepaoli/internal/transport/http"
	"agadeepaoli/internal/transport/http/dto/response"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m          *http.ServeMux
	log        *slog.Logger
	e          *echo.Echo
	routers    *httprouters.Routers
	cfg        config.HTTPConfig
	uploadsDir string
	uploadsURL string
	hidden     map[string]struct{}
}

func New(log *slog.Logger, cfg config.HTTPConfig, uploadsDir, uploadsURL string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validator.New()}

	s := &Server{
		log:        log,
		e:          e,
		routers:    routers,
		cfg:        cfg,
		uploadsDir: uploadsDir,
		uploadsURL: uploadsURL,
		hidden:     make(map[string]struct{}),
	}

	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)

			return nil
		},
	}))

	if cfg.Statsviz {
		mux := http.NewServeMux()
		if err := statsviz.Register(mux); err != nil {
			log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
		} else {
			s.m = mux
		}
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.cfg.Addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	if err := s.e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.HealthCheck)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api")
	{
		poems := api.Group("/poems")
		{
			poems.GET("", s.routers.ListPoems)
			poems.POST("", s.routers.CreatePoem)
			poems.DELETE("/:id", s.routers.DeletePoem)
		}

		images := api.Group("/images")
		{
			images.GET("", s.routers.ListImages)
			images.POST("", s.routers.UploadImage)
			images.DELETE("/:id", s.routers.DeleteImage)
		}
	}

	if s.m != nil {
		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}
	}

	s.e.GET("/swagger/*", echoSwagger.WrapHandler)

	s.e.Use(s.hideUploads)
	s.e.Static(s.uploadsURL, s.uploadsDir)

	if s.cfg.StaticDir != "" {
		s.e.Static("/", s.cfg.StaticDir)
	}
}

// HideUploads keeps the named files in the uploads dir from being served.
func (s *Server) HideUploads(names ...string) {
	for _, n := range names {
		s.hidden[n] = struct{}{}
	}
}

// hideUploads answers 404 for hidden and dot files under the uploads URL.
func (s *Server) hideUploads(next echo.HandlerFunc) echo.HandlerFunc {
	prefix := strings.TrimRight(s.uploadsURL, "/") + "/"
	return func(c echo.Context) error {
		p := c.Request().URL.Path
		if strings.HasPrefix(p, prefix) {
			name := path.Base(p)
			if _, ok := s.hidden[name]; ok || strings.HasPrefix(name, ".") {
				return echo.ErrNotFound
			}
		}
		return next(c)
	}
}

// errorHandler writes framework errors (unknown route, bad method, panics)
// in the same envelope the handlers use.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := response.ErrInternal.Error

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		s.log.Error("unhandled error",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.String("error", err.Error()),
		)
		msg = response.ErrInternal.Error
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, response.Error(msg))
	}
	if werr != nil {
		s.log.Error("failed to write error response", slog.String("error", werr.Error()))
	}
}
