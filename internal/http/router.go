package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Profiles    *ProfileHandler
	Conferences *ConferenceHandler
	Sessions    *SessionHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Profiles != nil {
		mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Profiles.Get(w, r)
			case http.MethodPut:
				cfg.Profiles.Save(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Conferences != nil {
		mux.HandleFunc("/announcement", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Conferences.Announcement(w, r)
		})
		mux.HandleFunc("/conferences", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Conferences.Create(w, r)
		})
		mux.HandleFunc("/conferences/query", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Conferences.Query(w, r)
		})
		mux.HandleFunc("/conferences/created", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Conferences.ListCreated(w, r)
		})
		mux.HandleFunc("/conferences/attending", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Conferences.ListAttending(w, r)
		})
		mux.HandleFunc("/conferences/", func(w http.ResponseWriter, r *http.Request) {
			segments := splitPath(strings.TrimPrefix(r.URL.Path, "/conferences/"))
			if len(segments) == 0 {
				http.NotFound(w, r)
				return
			}

			ctx := ContextWithConferenceKey(r.Context(), segments[0])
			r = r.WithContext(ctx)

			switch {
			case len(segments) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Conferences.Get(w, r)
				case http.MethodPut:
					cfg.Conferences.Update(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut)
				}
			case len(segments) == 2 && segments[1] == "registration":
				switch r.Method {
				case http.MethodPost:
					cfg.Conferences.Register(w, r)
				case http.MethodDelete:
					cfg.Conferences.Unregister(w, r)
				default:
					methodNotAllowed(w, http.MethodPost, http.MethodDelete)
				}
			case len(segments) == 2 && segments[1] == "sessions" && cfg.Sessions != nil:
				switch r.Method {
				case http.MethodGet:
					cfg.Sessions.List(w, r)
				case http.MethodPost:
					cfg.Sessions.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case len(segments) == 2 && segments[1] == "wishlist" && cfg.Sessions != nil:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Sessions.ListWishlist(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("/sessions/speaker", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Sessions.ListBySpeaker(w, r)
		})
		mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
			segments := splitPath(strings.TrimPrefix(r.URL.Path, "/sessions/"))
			if len(segments) != 2 || segments[1] != "wishlist" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			ctx := ContextWithSessionKey(r.Context(), segments[0])
			cfg.Sessions.AddToWishlist(w, r.WithContext(ctx))
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
