package app

import "github.com/consatan/weibo-image-uploader/internal/domain"

// App is the facade commands consume: the two user-facing services plus the
// stores the logout path clears directly.
type App struct {
	Auth       domain.Authenticator
	Uploads    domain.Uploader
	Sessions   domain.SessionStore
	Challenges domain.ChallengeStore
}

// New builds the facade from a wired dependency graph.
func New(w *Wire) *App {
	return &App{
		Auth:       w.Auth,
		Uploads:    w.Uploads,
		Sessions:   w.Sessions,
		Challenges: w.Challenges,
	}
}
