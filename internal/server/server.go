package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"causeboard/internal/identity"
	"causeboard/internal/service"
	"causeboard/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config
	core   *service.Service

	auth     *identity.Authenticator
	verifier *identity.Verifier
	cookie   *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	core *service.Service,
	auth *identity.Authenticator,
	verifier *identity.Verifier,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,
		core:   core,

		auth:     auth,
		verifier: verifier,
		cookie:   securecookie.New(hashKey, blockKey),

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodPost)

	// Public catalog
	r.HandleFunc("/categories", s.handlePublicCategories, http.MethodGet)
	r.HandleFunc("/categories/:category/fields", s.handlePublicCategoryFields, http.MethodGet)

	r.HandleFunc("/causes", s.handleListCauses, http.MethodGet)
	r.HandleFunc("/causes/:id", s.handleGetCause, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/causes", s.handleCreateCause, http.MethodPost)
		r.HandleFunc("/causes/:id", s.handleUpdateCause, http.MethodPatch)
		r.HandleFunc("/causes/:id", s.handleDeleteCause, http.MethodDelete)
	})

	// Category administration
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth, s.RequireAdmin)

		r.HandleFunc("/admin/categories", s.handleAdminListCategories, http.MethodGet)
		r.HandleFunc("/admin/categories", s.handleAdminCreateCategory, http.MethodPost)
		r.HandleFunc("/admin/categories/:category", s.handleAdminGetCategory, http.MethodGet)
		r.HandleFunc("/admin/categories/:category", s.handleAdminUpdateCategory, http.MethodPatch)

		r.HandleFunc("/admin/categories/:category/fields", s.handleAdminListFields, http.MethodGet)
		r.HandleFunc("/admin/categories/:category/fields", s.handleAdminAddField, http.MethodPost)
		r.HandleFunc("/admin/categories/:category/fields/order", s.handleAdminReorderFields, http.MethodPut)
		r.HandleFunc("/admin/categories/:category/fields/:fieldID", s.handleAdminUpdateField, http.MethodPatch)
		r.HandleFunc("/admin/categories/:category/fields/:fieldID", s.handleAdminDeleteField, http.MethodDelete)
	})
}

func (s *Service) userFromContext(ctx context.Context) (*types.User, error) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	if !ok {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
