// Package httpserver exposes the ClipStream REST API.
package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/service"
	"github.com/clipstream/clipstream/internal/token"
)

// Server wires the application services into HTTP handlers.
type Server struct {
	log        *zap.Logger
	tokens     *token.Manager
	refreshTTL time.Duration
	production bool

	auth      service.AuthService
	videos    service.VideoService
	comments  service.CommentService
	posts     service.PostService
	playlists service.PlaylistService
	follows   service.FollowService
	dashboard service.DashboardService
	store     service.MediaStore
}

// Deps collects the server's dependencies.
type Deps struct {
	Log        *zap.Logger
	Tokens     *token.Manager
	RefreshTTL time.Duration
	Production bool

	Auth      service.AuthService
	Videos    service.VideoService
	Comments  service.CommentService
	Posts     service.PostService
	Playlists service.PlaylistService
	Follows   service.FollowService
	Dashboard service.DashboardService
	Store     service.MediaStore
}

// New constructs a Server.
func New(d Deps) *Server {
	return &Server{
		log:        d.Log,
		tokens:     d.Tokens,
		refreshTTL: d.RefreshTTL,
		production: d.Production,
		auth:       d.Auth,
		videos:     d.Videos,
		comments:   d.Comments,
		posts:      d.Posts,
		playlists:  d.Playlists,
		follows:    d.Follows,
		dashboard:  d.Dashboard,
		store:      d.Store,
	}
}

// Router builds the API routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.RequireGuest)
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
				r.Post("/verify", s.handleVerify)
				r.Post("/resend-code", s.handleResendCode)
				r.Post("/forgot-password", s.handleForgotPassword)
				r.Post("/reset-password", s.handleResetPassword)
			})
			r.Get("/username-available", s.handleUsernameAvailable)
			r.Post("/refresh", s.handleRefresh)
			r.With(s.Authenticate).Post("/logout", s.handleLogout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Get("/me", s.handleMe)
			r.Patch("/me", s.handleUpdateProfile)
			r.Get("/me/history", s.handleWatchHistory)
			r.Post("/change-password", s.handleChangePassword)
		})

		r.With(s.Authenticate).Post("/media/uploads", s.handleNewUpload)

		r.Route("/videos", func(r chi.Router) {
			r.With(s.MaybeAuthenticate).Get("/", s.handleListVideos)
			r.With(s.Authenticate).Post("/", s.handlePublishVideo)
			r.With(s.Authenticate).Get("/liked", s.handleListLiked)
			r.Route("/{id}", func(r chi.Router) {
				r.With(s.MaybeAuthenticate).Get("/", s.handleGetVideo)
				r.Group(func(r chi.Router) {
					r.Use(s.Authenticate)
					r.Patch("/", s.handleUpdateVideo)
					r.Delete("/", s.handleDeleteVideo)
					r.Post("/toggle-publish", s.handleTogglePublish)
					r.Post("/like", s.handleLikeVideo)
				})
				r.Get("/comments", s.handleListVideoComments)
				r.With(s.Authenticate).Post("/comments", s.handleCommentVideo)
			})
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Patch("/", s.handleUpdateComment)
			r.Delete("/", s.handleDeleteComment)
			r.Post("/like", s.handleLikeComment)
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(s.Authenticate).Post("/", s.handleCreatePost)
			r.Route("/{id}", func(r chi.Router) {
				r.With(s.MaybeAuthenticate).Get("/", s.handleGetPost)
				r.Group(func(r chi.Router) {
					r.Use(s.Authenticate)
					r.Patch("/", s.handleUpdatePost)
					r.Delete("/", s.handleDeletePost)
					r.Post("/like", s.handleLikePost)
				})
				r.Get("/comments", s.handleListPostComments)
				r.With(s.Authenticate).Post("/comments", s.handleCommentPost)
			})
		})

		r.Route("/channels/{username}", func(r chi.Router) {
			r.With(s.MaybeAuthenticate).Get("/", s.handleChannel)
			r.With(s.Authenticate).Post("/follow", s.handleToggleFollow)
			r.Get("/followers", s.handleFollowers)
			r.Get("/following", s.handleFollowing)
			r.With(s.MaybeAuthenticate).Get("/posts", s.handleChannelPosts)
			r.Get("/playlists", s.handleChannelPlaylists)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.With(s.Authenticate).Post("/", s.handleCreatePlaylist)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPlaylist)
				r.Group(func(r chi.Router) {
					r.Use(s.Authenticate)
					r.Patch("/", s.handleUpdatePlaylist)
					r.Delete("/", s.handleDeletePlaylist)
					r.Post("/videos/{videoID}", s.handlePlaylistAddVideo)
					r.Delete("/videos/{videoID}", s.handlePlaylistRemoveVideo)
				})
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(s.Authenticate)
			r.Get("/stats", s.handleDashboardStats)
			r.Get("/videos", s.handleDashboardVideos)
		})

		r.Get("/healthz", s.handleHealth)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errs.ErrValidation
	}
	return id, nil
}

// pageFromQuery reads ?page= and ?limit= with defaults.
func pageFromQuery(r *http.Request) model.Page {
	var p model.Page
	p.Number, _ = strconv.Atoi(r.URL.Query().Get("page"))
	p.Size, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return p.Normalize()
}

// mustIdentity returns the identity placed by Authenticate. The middleware
// guarantees presence on protected routes.
func mustIdentity(r *http.Request) token.Identity {
	id, _ := IdentityFromCtx(r.Context())
	return id
}
