package selector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/pixmaster/internal/tools"
)

// fakeInvoker writes an output of a fixed size per tool, or fails.
type fakeInvoker struct {
	dir   string
	sizes map[tools.ID]int
	fail  map[tools.ID]error
	delay map[tools.ID]time.Duration

	mu    sync.Mutex
	calls []tools.ID
}

func (f *fakeInvoker) Run(ctx context.Context, id tools.ID, working, canonical string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if d := f.delay[id]; d > 0 {
		time.Sleep(d)
	}
	if err := f.fail[id]; err != nil {
		return "", err
	}
	out := filepath.Join(f.dir, string(id)+".out")
	if err := os.WriteFile(out, make([]byte, f.sizes[id]), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func TestPick(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		cands []Candidate
		want  tools.ID
	}{
		{"smallest wins", []Candidate{{Tool: "a", Size: 30}, {Tool: "b", Size: 10}, {Tool: "c", Size: 20}}, "b"},
		{"tie goes to priority", []Candidate{{Tool: "a", Size: 10}, {Tool: "b", Size: 10}}, "a"},
		{"failures skipped", []Candidate{{Tool: "a", Size: 1, Err: boom}, {Tool: "b", Size: 50}}, "b"},
		{"all failed", []Candidate{{Tool: "a", Err: boom}}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pick(tt.cands)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Tool)
		})
	}
}

func TestRace_AllToolsRunAndSmallestWins(t *testing.T) {
	inv := &fakeInvoker{
		dir:   t.TempDir(),
		sizes: map[tools.ID]int{tools.Advpng: 300, tools.Pngout: 100, tools.Optipng: 200},
	}
	ids := tools.ForFormat("png")
	out := Race(context.Background(), inv, ids, "/w/a.png", "/m/a.png")

	assert.ElementsMatch(t, ids, inv.calls)
	require.Len(t, out.Candidates, 3)
	require.False(t, out.Failed())
	assert.Equal(t, tools.Pngout, out.Winner.Tool)
	assert.Equal(t, int64(100), out.Winner.Size)
	assert.NoError(t, out.Err())
	for i, id := range ids {
		assert.Equal(t, id, out.Candidates[i].Tool, "candidates keep priority order")
	}
}

func TestRace_DeterministicTieBreak(t *testing.T) {
	for i := 0; i < 20; i++ {
		inv := &fakeInvoker{
			dir:   t.TempDir(),
			sizes: map[tools.ID]int{tools.Advpng: 64, tools.Pngout: 64, tools.Optipng: 64},
			// Make the highest-priority tool finish last.
			delay: map[tools.ID]time.Duration{tools.Advpng: 5 * time.Millisecond},
		}
		out := Race(context.Background(), inv, tools.ForFormat("png"), "/w/a.png", "/m/a.png")
		require.NotNil(t, out.Winner)
		assert.Equal(t, tools.Advpng, out.Winner.Tool)
	}
}

func TestRace_FailureDoesNotCancelSiblings(t *testing.T) {
	boom := errors.New(`Error while optimizing the file "/m/doctype_16_sprite.png"`)
	inv := &fakeInvoker{
		dir:   t.TempDir(),
		sizes: map[tools.ID]int{tools.Advpng: 90, tools.Optipng: 80},
		fail:  map[tools.ID]error{tools.Pngout: boom},
		delay: map[tools.ID]time.Duration{tools.Optipng: 20 * time.Millisecond},
	}
	out := Race(context.Background(), inv, tools.ForFormat("png"), "/w/a.png", "/m/a.png")

	require.NotNil(t, out.Winner)
	assert.Equal(t, tools.Optipng, out.Winner.Tool)
	assert.False(t, out.Candidates[1].OK())
	assert.ErrorIs(t, out.Err(), boom)
}

func TestRace_AllFail(t *testing.T) {
	inv := &fakeInvoker{
		dir:  t.TempDir(),
		fail: map[tools.ID]error{tools.Gifsicle: errors.New("no")},
	}
	out := Race(context.Background(), inv, []tools.ID{tools.Gifsicle}, "/w/a.gif", "/m/a.gif")
	assert.True(t, out.Failed())
	assert.Error(t, out.Err())
}

func TestRace_BaselineRanksLast(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.png")
	require.NoError(t, os.WriteFile(seed, make([]byte, 50), 0o644))

	inv := &fakeInvoker{dir: dir, sizes: map[tools.ID]int{tools.Advpng: 50}}
	out := Race(context.Background(), inv, []tools.ID{tools.Advpng}, "/w/a.png", "/m/a.png", Existing("convert", seed))
	require.Len(t, out.Candidates, 2)
	assert.Equal(t, tools.Advpng, out.Winner.Tool, "equal size keeps the tool")

	inv.sizes[tools.Advpng] = 70
	out = Race(context.Background(), inv, []tools.ID{tools.Advpng}, "/w/a.png", "/m/a.png", Existing("convert", seed))
	assert.Equal(t, tools.ID("convert"), out.Winner.Tool)
	assert.Equal(t, seed, out.Winner.Path)
}

func TestExisting_Missing(t *testing.T) {
	c := Existing("convert", filepath.Join(t.TempDir(), "nope.png"))
	assert.False(t, c.OK())
}
