package console

import (
	"net/url"

	"github.com/rs/zerolog"
)

// Navigator abstracts the routing shell the console runs inside. The
// service only produces navigation side effects; rendering and route
// matching live outside this core.
type Navigator interface {
	// Location returns the current route as path plus query
	Location() url.URL

	// Navigate moves the shell to the given path (may include a query)
	Navigate(path string)
}

// LogNavigator is a Navigator for headless callers: it tracks the
// current location in memory and logs every transition
type LogNavigator struct {
	log     zerolog.Logger
	current url.URL
}

// NewLogNavigator creates a LogNavigator starting at the given path
func NewLogNavigator(log zerolog.Logger, startPath string) *LogNavigator {
	n := &LogNavigator{log: log}
	n.Navigate(startPath)
	return n
}

func (n *LogNavigator) Location() url.URL {
	return n.current
}

func (n *LogNavigator) Navigate(path string) {
	parsed, err := url.Parse(path)
	if err != nil {
		n.log.Warn().Err(err).Str("path", path).Msg("Ignoring navigation to unparsable path")
		return
	}
	n.current = *parsed
	n.log.Debug().Str("path", path).Msg("Navigated")
}
