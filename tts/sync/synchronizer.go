// Package sync drives speak requests end to end and keeps the active
// word aligned with the audio clock while playback runs.
package sync

import (
	"context"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/cue"
	"github.com/voxsync/voxsync/tts/segment"
	"github.com/voxsync/voxsync/tts/stream"
)

// PlaybackState is an observable snapshot of the synchronizer. It is
// replaced wholesale on every change; readers never see a partial update.
type PlaybackState struct {
	State      tts.StateType
	Text       string
	Boundaries []tts.WordBoundary
	Cues       []tts.WordCue
	WordIndex  int
	Duration   time.Duration
}

// Synchronizer coordinates one speak request at a time: it streams audio
// from the engine, assembles and plays it, and publishes the index of the
// word under the playhead as playback advances.
//
// Callbacks run on the synchronizer's feed goroutine and must return
// quickly.
type Synchronizer struct {
	cfg    tts.Config
	engine tts.Engine
	player tts.AudioPlayer

	// speakMu serializes Speak and Stop; mu guards the snapshot and the
	// machine.
	speakMu stdsync.Mutex
	mu      stdsync.RWMutex
	state   PlaybackState
	machine *tts.StateMachine

	cancelFeed context.CancelFunc
	feedDone   chan struct{}

	onWord  []func(int)
	onState []func(tts.StateType)
}

// New creates a synchronizer over the given engine and player.
func New(cfg tts.Config, engine tts.Engine, player tts.AudioPlayer) *Synchronizer {
	return &Synchronizer{
		cfg:     cfg,
		engine:  engine,
		player:  player,
		machine: tts.NewStateMachine(),
	}
}

// OnWordChange registers a callback invoked with the word index whenever
// the active word changes. Register before the first Speak.
func (s *Synchronizer) OnWordChange(fn func(int)) {
	s.onWord = append(s.onWord, fn)
}

// OnStateChange registers a callback invoked on every state transition.
// Register before the first Speak.
func (s *Synchronizer) OnStateChange(fn func(tts.StateType)) {
	s.onState = append(s.onState, fn)
}

// Snapshot returns the current playback state.
func (s *Synchronizer) Snapshot() PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Speak synthesizes req and starts playback, returning once audio is
// playing. Any previous request is stopped first: its position feed is
// torn down before the new request publishes anything, so a stale feed
// can never move the word cursor. Speak makes one attempt; on failure the
// word index resets to zero and the error is returned.
func (s *Synchronizer) Speak(ctx context.Context, req tts.Request) error {
	s.speakMu.Lock()
	defer s.speakMu.Unlock()

	text := req.Text
	if strings.TrimSpace(text) == "" {
		return tts.ErrEmptyText
	}

	s.teardown()

	boundaries := segment.Words(text)
	if err := s.transition(tts.StateStreaming); err != nil {
		return err
	}
	s.replace(PlaybackState{
		State:      tts.StateStreaming,
		Text:       text,
		Boundaries: boundaries,
	})

	log.Debug("speak", "engine", s.engine.Name(), "words", len(boundaries))

	chunks, errs := s.engine.Synthesize(ctx, text)
	assembled, err := stream.Assemble(ctx, chunks, errs)
	if err != nil {
		return s.fail(fmt.Errorf("synthesize: %w", err))
	}

	if err := s.transition(tts.StateAssembling); err != nil {
		return err
	}

	gain := req.Gain
	if gain == 0 {
		gain = s.cfg.Gain
	}
	stream.ApplyGain(assembled, gain)

	audio, err := stream.BuildContainer(assembled)
	if err != nil {
		return s.fail(fmt.Errorf("build container: %w", err))
	}

	measured, err := s.player.Play(audio)
	if err != nil {
		return s.fail(fmt.Errorf("play: %w", err))
	}
	if err := s.transition(tts.StatePlaying); err != nil {
		return err
	}

	cues := cue.FromOffsets(boundaries, assembled, measured)
	s.replace(PlaybackState{
		State:      tts.StatePlaying,
		Text:       text,
		Boundaries: boundaries,
		Cues:       cues,
		Duration:   measured,
	})

	feedCtx, cancel := context.WithCancel(context.Background())
	s.cancelFeed = cancel
	s.feedDone = make(chan struct{})
	go s.feed(feedCtx, cues, s.feedDone)

	return nil
}

// Stop cancels the position feed, halts playback, and returns to idle.
func (s *Synchronizer) Stop() error {
	s.speakMu.Lock()
	defer s.speakMu.Unlock()

	s.teardown()
	s.mu.Lock()
	s.state = PlaybackState{State: s.machine.Current()}
	s.mu.Unlock()
	return nil
}

// teardown cancels the running feed, waits for it to exit, stops the
// player, and brings the machine back to a state from which a new request
// can start.
func (s *Synchronizer) teardown() {
	if s.cancelFeed != nil {
		s.cancelFeed()
		<-s.feedDone
		s.cancelFeed = nil
		s.feedDone = nil
	}
	if s.player.IsPlaying() {
		if err := s.player.Stop(); err != nil {
			log.Debug("stop player", "error", err)
		}
	}
	s.mu.Lock()
	if s.machine.Current() == tts.StatePlaying || s.machine.Current() == tts.StateFailed {
		s.machine.Transition(tts.StateIdle)
		s.state.State = tts.StateIdle
	}
	s.mu.Unlock()
}

// feed polls the player position until playback finishes or the feed is
// canceled, publishing the active word index. The published index never
// moves backward within one request; a jittery position feed cannot make
// the highlight regress.
func (s *Synchronizer) feed(ctx context.Context, cues []tts.WordCue, done chan struct{}) {
	defer close(done)

	last := -1
	emit := func(idx int) {
		if idx <= last {
			return
		}
		last = idx
		s.mu.Lock()
		s.state.WordIndex = idx
		s.mu.Unlock()
		for _, fn := range s.onWord {
			fn(idx)
		}
	}
	emit(0)

	rate := s.cfg.UpdateRate
	if rate <= 0 {
		rate = tts.DefaultConfig().UpdateRate
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.player.Done():
			s.finish(cues, emit)
			return
		case <-ticker.C:
			emit(cue.Resolve(s.player.Position(), cues))
		}
	}
}

// finish lands the cursor on the final word and returns to idle after
// playback runs to completion.
func (s *Synchronizer) finish(cues []tts.WordCue, emit func(int)) {
	if n := len(cues); n > 0 {
		emit(cues[n-1].WordIndex)
	}

	s.mu.Lock()
	s.machine.Transition(tts.StateIdle)
	s.state.State = tts.StateIdle
	s.mu.Unlock()

	for _, fn := range s.onState {
		fn(tts.StateIdle)
	}
	log.Debug("playback finished")
}

// fail records the failure, clears the session, and returns err.
func (s *Synchronizer) fail(err error) error {
	s.mu.Lock()
	s.machine.Transition(tts.StateFailed)
	s.state = PlaybackState{State: tts.StateFailed}
	s.mu.Unlock()

	for _, fn := range s.onState {
		fn(tts.StateFailed)
	}
	log.Error("speak failed", "error", err)
	return err
}

// transition moves the machine and notifies state listeners.
func (s *Synchronizer) transition(to tts.StateType) error {
	s.mu.Lock()
	if !s.machine.Transition(to) {
		from := s.machine.Current()
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", tts.ErrInvalidState, from, to)
	}
	s.state.State = to
	s.mu.Unlock()

	for _, fn := range s.onState {
		fn(to)
	}
	return nil
}

// replace swaps in a whole new snapshot.
func (s *Synchronizer) replace(state PlaybackState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
