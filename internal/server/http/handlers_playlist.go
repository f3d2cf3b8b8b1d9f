package httpserver

import (
	"net/http"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	p, err := s.playlists.Create(r.Context(), ident.UserID, req.Name, req.Description)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, p, "Playlist created")
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	p, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, p, "")
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decode(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	p, err := s.playlists.Update(r.Context(), ident.UserID, id, req.Name, req.Description)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, p, "Playlist updated")
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.playlists.Delete(r.Context(), ident.UserID, id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Playlist deleted")
}

func (s *Server) handlePlaylistAddVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	videoID, err := urlID(r, "videoID")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.playlists.AddVideo(r.Context(), ident.UserID, id, videoID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Video added to playlist")
}

func (s *Server) handlePlaylistRemoveVideo(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	videoID, err := urlID(r, "videoID")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ident := mustIdentity(r)
	if err := s.playlists.RemoveVideo(r.Context(), ident.UserID, id, videoID); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, nil, "Video removed from playlist")
}
