package app

import (
	"net/http"

	"github.com/go-logr/logr"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home      string       // state directory, e.g. $HOME/.weibo-uploader
	RedisAddr string       // optional redis address; file cache when empty
	RedisAuth string       // optional redis password
	RedisDB   int          // redis database number
	UserAgent string       // optional User-Agent override
	Secure    bool         // https delivery URLs
	HTTP      *http.Client // optional; the transport builds its own otherwise
	Logger    logr.Logger  // optional; defaults to a discarding logger
}
