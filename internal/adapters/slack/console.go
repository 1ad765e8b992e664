package slack

import (
	"context"
	"fmt"
	"io"

	"github.com/example/putzplan/internal/ports/secondary"
)

// ConsoleAnnouncer prints announcements instead of posting them. It backs the
// local store when no chat token is configured.
type ConsoleAnnouncer struct {
	out io.Writer
}

// NewConsoleAnnouncer creates an announcer writing to out.
func NewConsoleAnnouncer(out io.Writer) *ConsoleAnnouncer {
	return &ConsoleAnnouncer{out: out}
}

// Post writes the message with its channel header.
func (a *ConsoleAnnouncer) Post(_ context.Context, channel, text string) error {
	if channel == "" {
		channel = "console"
	}
	_, err := fmt.Fprintf(a.out, "── #%s ──\n%s\n", channel, text)
	return err
}

// NoLookup resolves no identities; every tag falls back to the name.
type NoLookup struct{}

// LookupByEmail always misses.
func (NoLookup) LookupByEmail(context.Context, string) (string, bool, error) {
	return "", false, nil
}

var (
	_ secondary.Announcer      = (*ConsoleAnnouncer)(nil)
	_ secondary.IdentityLookup = NoLookup{}
)
