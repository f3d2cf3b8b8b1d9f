package httpserver

import (
	"net/http"
)

// --- Comments ---

func (s *Server) handleCommentVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	c, err := s.comments.AddToVideo(r.Context(), ident.UserID, videoID, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, c, "Comment added")
}

func (s *Server) handleCommentPost(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	c, err := s.comments.AddToPost(r.Context(), ident.UserID, postID, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, c, "Comment added")
}

func (s *Server) handleListVideoComments(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	page, err := s.comments.ListForVideo(r.Context(), videoID, pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleListPostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	page, err := s.comments.ListForPost(r.Context(), postID, pageFromQuery(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, page, "")
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	c, err := s.comments.Update(r.Context(), ident.UserID, id, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, c, "Comment updated")
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.comments.Delete(r.Context(), ident.UserID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Comment deleted")
}

func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	liked, err := s.comments.ToggleLike(r.Context(), ident.UserID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"liked": liked}, "")
}

// --- Community posts ---

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	p, err := s.posts.Create(r.Context(), ident.UserID, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, p, "Post created")
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	p, err := s.posts.Get(r.Context(), id, viewerID(r.Context()))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, p, "")
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	p, err := s.posts.Update(r.Context(), ident.UserID, id, req.Content)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, p, "Post updated")
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.posts.Delete(r.Context(), ident.UserID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Post deleted")
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	liked, err := s.posts.ToggleLike(r.Context(), ident.UserID, id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"liked": liked}, "")
}
