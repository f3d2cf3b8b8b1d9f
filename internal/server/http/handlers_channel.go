package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	p, err := s.follows.Channel(r.Context(), username, viewerID(r.Context()))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, p, "")
}

func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	following, err := s.follows.Toggle(r.Context(), ident.UserID, chi.URLParam(r, "username"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"following": following}, "")
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	page, err := s.follows.Followers(r.Context(), chi.URLParam(r, "username"), pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	page, err := s.follows.Following(r.Context(), chi.URLParam(r, "username"), pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleChannelPosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.posts.ListByChannel(r.Context(), chi.URLParam(r, "username"), viewerID(r.Context()), pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleChannelPlaylists(w http.ResponseWriter, r *http.Request) {
	page, err := s.playlists.ListByChannel(r.Context(), chi.URLParam(r, "username"), pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	stats, err := s.dashboard.Stats(r.Context(), ident.UserID)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, stats, "")
}

func (s *Server) handleDashboardVideos(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	page, err := s.dashboard.Videos(r.Context(), ident.UserID, pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}
