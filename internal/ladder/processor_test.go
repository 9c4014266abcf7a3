package ladder

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jason-s-yu/ranked/internal/database"
	"github.com/jason-s-yu/ranked/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) NotifyRatingsChanged() { c.n.Add(1) }

type staticKey string

func (k staticKey) Verify(candidate string) bool { return candidate != "" && candidate == string(k) }

type recordingPublisher struct {
	mu      sync.Mutex
	matches []*models.Match
	err     error
}

func (r *recordingPublisher) PublishMatch(_ context.Context, m *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, m)
	return r.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T, users ...string) (*Processor, *database.MemoryStore, *countingNotifier) {
	store := database.NewMemoryStore()
	for _, u := range users {
		_, err := store.RegisterPlayer(context.Background(), u)
		require.NoError(t, err)
	}
	n := &countingNotifier{}
	return NewProcessor(store, n, staticKey("letmein"), quietLogger()), store, n
}

func TestSubmitMatchAliceBeatsBob(t *testing.T) {
	p, store, n := setup(t, "alice", "bob")
	ctx := context.Background()

	out, err := p.SubmitMatch(ctx, "alice", "bob", "sword")
	require.NoError(t, err)
	assert.Equal(t, Side{Username: "alice", Old: 500, New: 516, Change: 16}, out.Winner)
	assert.Equal(t, Side{Username: "bob", Old: 500, New: 484, Change: -16}, out.Loser)
	assert.EqualValues(t, 1, n.n.Load())

	alice, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 516, alice.Rating("sword"))
	assert.Equal(t, 502, alice.GlobalScore)
	assert.Equal(t, 502, alice.PeakRating)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 1, alice.MatchesPlayed)

	bob, err := store.GetPlayer(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 484, bob.Rating("sword"))
	assert.Equal(t, 498, bob.GlobalScore)
	assert.Equal(t, 500, bob.PeakRating)
	assert.Equal(t, 1, bob.Losses)
	assert.Equal(t, 1, bob.MatchesPlayed)

	history, err := store.RecentMatches(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "sword", history[0].GameMode)
	assert.Equal(t, 16, history[0].WinnerEloChange)
	assert.Equal(t, 484, history[0].LoserNewElo)
}

func TestSubmitMatchValidation(t *testing.T) {
	p, _, n := setup(t, "alice", "bob")
	ctx := context.Background()

	cases := []struct{ w, l, mode string }{
		{"", "bob", "sword"},
		{"alice", "", "sword"},
		{"alice", "bob", ""},
		{"alice", "bob", "chess"},
		{"alice", "alice", "sword"},
		{"ghost", "ghost", "chess"}, // same player wins regardless of other fields
	}
	for _, c := range cases {
		_, err := p.SubmitMatch(ctx, c.w, c.l, c.mode)
		assert.ErrorIs(t, err, ErrValidation, "%+v", c)
	}
	assert.Zero(t, n.n.Load())
}

func TestSubmitMatchUnknownPlayerWritesNothing(t *testing.T) {
	p, store, n := setup(t, "alice")
	ctx := context.Background()

	_, err := p.SubmitMatch(ctx, "alice", "ghost", "axe")
	assert.ErrorIs(t, err, database.ErrPlayerNotFound)
	_, err = p.SubmitMatch(ctx, "ghost", "alice", "axe")
	assert.ErrorIs(t, err, database.ErrPlayerNotFound)

	alice, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, alice.MatchesPlayed)
	assert.Equal(t, 500, alice.Rating("axe"))
	_, err = store.GetPlayer(ctx, "ghost")
	assert.ErrorIs(t, err, database.ErrPlayerNotFound, "no implicit registration")

	history, err := store.RecentMatches(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Zero(t, n.n.Load())
}

func TestSubmitMatchPeakIsMonotonic(t *testing.T) {
	p, store, _ := setup(t, "alice", "bob")
	ctx := context.Background()

	peak := models.DefaultRating
	sequence := []string{"alice", "alice", "bob", "bob", "bob", "bob", "alice"}
	for _, winner := range sequence {
		loser := "bob"
		if winner == "bob" {
			loser = "alice"
		}
		_, err := p.SubmitMatch(ctx, winner, loser, "mace")
		require.NoError(t, err)

		alice, err := store.GetPlayer(ctx, "alice")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, alice.PeakRating, peak)
		assert.GreaterOrEqual(t, alice.PeakRating, alice.GlobalScore)
		assert.Equal(t, alice.Wins+alice.Losses, alice.MatchesPlayed)
		peak = alice.PeakRating
	}
}

func TestSubmitMatchConcurrentSamePlayer(t *testing.T) {
	p, store, n := setup(t, "alice", "bob", "carol")
	ctx := context.Background()

	const games = 30
	var wg sync.WaitGroup
	for i := 0; i < games; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loser := "bob"
			if i%2 == 0 {
				loser = "carol"
			}
			_, err := p.SubmitMatch(ctx, "alice", loser, "crystal")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	alice, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, games, alice.Wins)
	assert.Equal(t, games, alice.MatchesPlayed)
	assert.EqualValues(t, games, n.n.Load())

	history, err := store.RecentMatches(ctx, "alice", 100)
	require.NoError(t, err)
	require.Len(t, history, games)
	// replaying the history in order reproduces the stored rating
	assert.Equal(t, alice.Rating("crystal"), history[0].WinnerNewElo)
	for i := 0; i < len(history)-1; i++ {
		assert.Equal(t, history[i+1].WinnerNewElo, history[i].WinnerOldElo)
	}
}

func TestSubmitMatchPublishes(t *testing.T) {
	store := database.NewMemoryStore()
	ctx := context.Background()
	for _, u := range []string{"alice", "bob"} {
		_, err := store.RegisterPlayer(ctx, u)
		require.NoError(t, err)
	}
	pub := &recordingPublisher{err: errors.New("redis down")}
	p := NewProcessor(store, nil, staticKey("k"), quietLogger(), WithPublisher(pub))

	out, err := p.SubmitMatch(ctx, "alice", "bob", "axe")
	require.NoError(t, err, "publish failures do not fail the match")
	require.Len(t, pub.matches, 1)
	assert.Equal(t, out.Match.ID, pub.matches[0].ID)
}

func TestOverrideRating(t *testing.T) {
	p, store, n := setup(t, "alice")
	ctx := context.Background()

	_, err := p.OverrideRating(ctx, "wrong", "alice", "global", 900)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = p.OverrideRating(ctx, "", "alice", "global", 900)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, p.Authorize("wrong"), ErrUnauthorized)
	assert.NoError(t, p.Authorize("letmein"))

	_, err = p.OverrideRating(ctx, "letmein", "ghost", "global", 900)
	assert.ErrorIs(t, err, database.ErrPlayerNotFound)
	_, err = p.OverrideRating(ctx, "letmein", "alice", "chess", 900)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, n.n.Load())

	player, err := p.OverrideRating(ctx, "letmein", "alice", "global", 900)
	require.NoError(t, err)
	assert.Equal(t, 900, player.GlobalScore)
	assert.Equal(t, 900, player.PeakRating)
	assert.EqualValues(t, 1, n.n.Load())

	player, err = p.OverrideRating(ctx, "letmein", "alice", "axe", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, player.Rating("axe"))
	assert.Equal(t, 900, player.GlobalScore, "global override survives a later mode override")
	assert.Equal(t, 900, player.PeakRating)
	assert.Zero(t, player.MatchesPlayed)

	stored, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, player, stored)
}
