package mock

import (
	"context"
	"io"

	"github.com/fwojciec/converse"
)

// Interface compliance checks.
var (
	_ converse.Backend      = (*Backend)(nil)
	_ converse.Player       = (*Player)(nil)
	_ converse.AudioSource  = (*AudioSource)(nil)
	_ converse.Conversation = (*Conversation)(nil)
)

// Backend is a test double for converse.Backend.
// Set ConverseFn before calling Converse.
type Backend struct {
	ConverseFn func(ctx context.Context, audio converse.Audio) (converse.Result, error)
}

// Converse delegates to ConverseFn.
func (b *Backend) Converse(ctx context.Context, audio converse.Audio) (converse.Result, error) {
	return b.ConverseFn(ctx, audio)
}

// Player is a test double for converse.Player.
// Set PlayFn before calling Play.
type Player struct {
	PlayFn func(ctx context.Context, ref string) (<-chan error, error)
}

// Play delegates to PlayFn.
func (p *Player) Play(ctx context.Context, ref string) (<-chan error, error) {
	return p.PlayFn(ctx, ref)
}

// AudioSource is a test double for converse.AudioSource.
// Set OpenAudioFn before calling OpenAudio.
type AudioSource struct {
	OpenAudioFn func(ctx context.Context, ref string) (io.ReadCloser, error)
}

// OpenAudio delegates to OpenAudioFn.
func (s *AudioSource) OpenAudio(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.OpenAudioFn(ctx, ref)
}

// Conversation is a test double for converse.Conversation.
// Set the function fields for the methods you need.
type Conversation struct {
	BeginFn  func(ctx context.Context, onEvent func(converse.Event)) error
	EndFn    func(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error)
	ReplayFn func(ctx context.Context, onEvent func(converse.Event)) error
}

// Begin delegates to BeginFn.
func (c *Conversation) Begin(ctx context.Context, onEvent func(converse.Event)) error {
	return c.BeginFn(ctx, onEvent)
}

// End delegates to EndFn.
func (c *Conversation) End(ctx context.Context, onEvent func(converse.Event)) (*converse.Exchange, error) {
	return c.EndFn(ctx, onEvent)
}

// Replay delegates to ReplayFn.
func (c *Conversation) Replay(ctx context.Context, onEvent func(converse.Event)) error {
	return c.ReplayFn(ctx, onEvent)
}
