package httpserver

import (
	"net/http"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/repository"
	"github.com/clipstream/clipstream/internal/service"
)

// uploadPrefixes whitelists the storage key prefixes a client may request.
var uploadPrefixes = map[string]string{
	"video":     "videos",
	"thumbnail": "thumbs",
	"avatar":    "avatars",
}

func (s *Server) handleNewUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	prefix, ok := uploadPrefixes[req.Kind]
	if !ok {
		s.respondErr(w, r, errs.ErrValidation)
		return
	}
	up, err := s.store.NewUpload(r.Context(), prefix)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, up, "Upload URL issued")
}

func (s *Server) handlePublishVideo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		VideoKey    string  `json:"videoKey"`
		ThumbKey    string  `json:"thumbKey"`
		Duration    float64 `json:"duration"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	v, err := s.videos.Publish(r.Context(), ident.UserID, service.PublishVideoInput{
		Title:       req.Title,
		Description: req.Description,
		VideoKey:    req.VideoKey,
		ThumbKey:    req.ThumbKey,
		Duration:    req.Duration,
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, v, "Video created")
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	v, err := s.videos.Get(r.Context(), id, viewerID(r.Context()))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, v, "")
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.VideoFilter{
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("sortDir") != "asc",
		Page:     pageFromQuery(r),
	}
	page, err := s.videos.List(r.Context(), f)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ThumbKey    string `json:"thumbKey"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	v, err := s.videos.Update(r.Context(), ident.UserID, id, req.Title, req.Description, req.ThumbKey)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, v, "Video updated")
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.videos.Delete(r.Context(), ident.UserID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Video deleted")
}

func (s *Server) handleTogglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	published, err := s.videos.TogglePublish(r.Context(), ident.UserID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"isPublished": published}, "")
}

func (s *Server) handleLikeVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	liked, err := s.videos.ToggleLike(r.Context(), ident.UserID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"liked": liked}, "")
}

func (s *Server) handleListLiked(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	page, err := s.videos.ListLiked(r.Context(), ident.UserID, pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	ident := mustIdentity(r)
	page, err := s.videos.History(r.Context(), ident.UserID, pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}
