package nats

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bacalhau-project/gtbarrier/pkg/lib/validate"
)

const (
	DefaultJoinTimeout = 30 * time.Second
	defaultScheme      = "nats://"
	subjectRoot        = "gtbarrier"
)

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)

// Config describes how one rank joins a group.
type Config struct {
	// URL of the NATS server, e.g. "nats://127.0.0.1:4222". The scheme may be omitted.
	URL string
	// Group scopes subjects so several jobs can share a server.
	Group string
	Rank  int
	// Size of the group. Only rank 0 needs it; the other ranks learn it while joining.
	Size int
	// JoinTimeout bounds the rendezvous.
	JoinTimeout time.Duration
	// Name is reported to the server as the connection name.
	Name string
}

func (c Config) Validate() error {
	err := errors.Join(
		validate.NotBlank(c.URL, "nats url must be set"),
		validate.NotBlank(c.Group, "nats group must be set"),
		validate.IsGreaterOrEqualToZero(c.Rank, "rank must not be negative, got %d", c.Rank),
	)
	if c.Rank == 0 {
		err = errors.Join(err, validate.IsGreaterThanZero(c.Size, "rank 0 needs the group size, got %d", c.Size))
	}
	if strings.ContainsAny(c.Group, ".*> ") {
		err = errors.Join(err, errors.New("nats group must not contain '.', '*', '>' or spaces"))
	}
	return err
}

func (c Config) joinTimeout() time.Duration {
	if c.JoinTimeout <= 0 {
		return DefaultJoinTimeout
	}
	return c.JoinTimeout
}

// serverURL adds the default scheme when the URL has none.
func (c Config) serverURL() string {
	u := strings.TrimSpace(c.URL)
	if !schemeRegex.MatchString(u) {
		u = defaultScheme + u
	}
	return u
}
