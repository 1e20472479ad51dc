package pipeline

import (
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

type groupCollector struct {
	mu     sync.Mutex
	groups []types.MessageGroup
}

func (c *groupCollector) add(g types.MessageGroup) {
	c.mu.Lock()
	c.groups = append(c.groups, g)
	c.mu.Unlock()
}

func (c *groupCollector) snapshot() []types.MessageGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.MessageGroup(nil), c.groups...)
}

func sizes(groups []types.MessageGroup) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.Len()
	}
	return out
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "stream", "testdata", name))
	require.NoError(t, err)
	return data
}

// split cuts data into chunks of random size in [lo, hi].
func split(data []byte, rng *rand.Rand, lo, hi int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := min(lo+rng.Intn(hi-lo+1), len(data))
		chunks = append(chunks, append([]byte(nil), data[:n]...))
		data = data[n:]
	}
	return chunks
}

var fixtureASizes = []int{3, 1, 2, 1, 2, 1, 1, 4, 1, 1, 2, 2, 1}

func TestPipeline_StreamsFixture(t *testing.T) {
	data := loadFixture(t, "module_stream_a.xml")

	for seed := int64(1); seed <= 10; seed++ {
		var out groupCollector
		p := New(Config{OnGroup: out.add})
		require.NoError(t, p.Start())

		for _, chunk := range split(data, rand.New(rand.NewSource(seed)), 39, 150) {
			require.True(t, p.Enqueue(chunk))
		}
		p.Finish()
		p.Wait()

		assert.Equal(t, StateFinished, p.State())
		assert.Equal(t, fixtureASizes, sizes(out.snapshot()), "seed %d", seed)

		stats := p.Stats()
		assert.Equal(t, int64(11), stats.Modules)
		assert.Equal(t, int64(22), stats.Messages)
		assert.Equal(t, int64(13), stats.Groups)
		assert.Equal(t, int64(len(data)), stats.Bytes)
		assert.Zero(t, stats.MalformedRecords)
	}
}

func TestPipeline_FixtureB(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	data := loadFixture(t, "module_stream_b.xml")
	for _, chunk := range split(data, rand.New(rand.NewSource(7)), 39, 150) {
		p.Enqueue(chunk)
	}
	p.Finish()
	p.Wait()

	assert.Equal(t, []int{1, 1, 1, 1, 1, 1, 1, 1}, sizes(out.snapshot()))
	assert.Equal(t, int64(44), p.Stats().Modules)
}

func TestPipeline_ChunksHeldWhileIdle(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})

	require.True(t, p.Enqueue(loadFixture(t, "module_stream_a.xml")))
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, out.snapshot(), "idle pipeline must not emit")
	assert.Equal(t, StateIdle, p.State())

	require.NoError(t, p.Start())
	p.Finish()
	p.Wait()
	assert.Len(t, out.snapshot(), 13)
}

func TestPipeline_ResidualModuleWithoutDocClose(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	p.Enqueue([]byte("<doc>\n--- Module:   a.c (C)\n<m><f>a.c</f><l>1</l><t>Warning</t><n>1</n><d>x</d></m>\n"))
	p.Enqueue([]byte("<m><f>a.c</f><l>2</l><t>Supplemental</t><n>2</n><d>y</d></m>\n"))
	p.Finish()
	p.Wait()

	groups := out.snapshot()
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Len())
}

func TestPipeline_MalformedModuleSkipped(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	p.Enqueue([]byte(strings.Join([]string{
		"<doc>",
		"--- Module:   bad.c (C)",
		"<m><f>bad.c</f><l>NaN</l><t>Error</t><n>1</n><d>x</d></m>",
		"--- Module:   good.c (C)",
		"<m><f>good.c</f><l>3</l><t>Error</t><n>1</n><d>x</d></m>",
		"</doc>",
	}, "\n")))
	p.Finish()
	p.Wait()

	groups := out.snapshot()
	require.Len(t, groups, 1)
	assert.Equal(t, "good.c", groups[0].Primary().File)
	assert.Equal(t, int64(1), p.Stats().MalformedRecords)
	assert.Equal(t, int64(2), p.Stats().Modules)
}

func TestPipeline_DuplicatesAcrossPasses(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	data := loadFixture(t, "module_stream_a.xml")
	body := string(data)
	body = body[strings.Index(body, "--- Module:"):strings.LastIndex(body, "</doc>")]
	p.Enqueue([]byte("<doc>\n" + body + body + "</doc>\n"))
	p.Finish()
	p.Wait()

	assert.Len(t, out.snapshot(), 13)
	assert.Equal(t, int64(22), p.Stats().Duplicates)
}

func TestPipeline_AbortBeforeStartDrainsQueue(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})

	for _, chunk := range split(loadFixture(t, "module_stream_a.xml"), rand.New(rand.NewSource(3)), 39, 150) {
		p.Enqueue(chunk)
	}
	p.Abort()

	assert.Equal(t, StateFinished, p.State())
	assert.True(t, p.Aborted())
	assert.Equal(t, fixtureASizes, sizes(out.snapshot()))
}

func TestPipeline_AbortMidStreamDrainsQueuedChunks(t *testing.T) {
	data := loadFixture(t, "module_stream_a.xml")
	chunks := split(data, rand.New(rand.NewSource(11)), 39, 150)
	half := len(chunks) / 2

	gate := make(chan struct{})
	first := make(chan struct{})
	var once sync.Once
	var out groupCollector

	p := New(Config{OnGroup: func(g types.MessageGroup) {
		once.Do(func() {
			close(first)
			<-gate
		})
		out.add(g)
	}})
	require.NoError(t, p.Start())

	for _, chunk := range chunks[:half] {
		p.Enqueue(chunk)
	}
	<-first

	// Consumer is blocked inside the first emission; everything below
	// is queued behind it.
	for _, chunk := range chunks[half:] {
		require.True(t, p.Enqueue(chunk))
	}

	aborted := make(chan struct{})
	go func() {
		p.Abort()
		close(aborted)
	}()

	select {
	case <-aborted:
		t.Fatal("Abort returned while consumer was still busy")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	select {
	case <-aborted:
	case <-time.After(5 * time.Second):
		t.Fatal("Abort did not return")
	}

	assert.Equal(t, StateFinished, p.State())
	assert.Equal(t, fixtureASizes, sizes(out.snapshot()))
	assert.False(t, p.Enqueue([]byte("late")), "aborted pipeline must reject input")
}

func TestPipeline_DiscardIdle(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})

	p.Enqueue(loadFixture(t, "module_stream_a.xml"))
	p.Discard()
	p.Wait()

	assert.Empty(t, out.snapshot())
	assert.Equal(t, StateFinished, p.State())
	assert.False(t, p.Enqueue([]byte("x")))
}

func TestPipeline_DiscardRunning(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	p.Discard()
	assert.Equal(t, StateFinished, p.State())
	assert.Empty(t, out.snapshot())
}

func TestPipeline_ResetBetweenRuns(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	data := loadFixture(t, "module_stream_b.xml")

	for run := range 2 {
		require.NoError(t, p.Start())
		p.Enqueue(data)
		p.Finish()
		p.Wait()
		assert.Len(t, out.snapshot(), 8*(run+1), "run %d", run)
		assert.Equal(t, int64(8), p.Stats().Groups)
		require.NoError(t, p.Reset())
		assert.Equal(t, StateIdle, p.State())
	}
}

func TestPipeline_ResetAsSoonAsFinishedKeepsNextRunOpen(t *testing.T) {
	p := New(Config{})

	for run := range 200 {
		require.NoError(t, p.Start())
		p.Finish()
		for p.State() != StateFinished {
			runtime.Gosched()
		}
		require.NoError(t, p.Reset(), "run %d", run)

		// The previous consumer may still be unwinding; it must not
		// close the channel that belongs to the next run.
		select {
		case <-p.Done():
			t.Fatalf("run %d: done closed before the next run started", run)
		default:
		}
	}
	require.NoError(t, p.Start())
	p.Finish()
	p.Wait()
}

func TestPipeline_QueuedByteCap(t *testing.T) {
	p := New(Config{MaxQueuedBytes: 10})

	require.True(t, p.Enqueue([]byte("abcdef")))
	assert.False(t, p.Enqueue([]byte("ghijkl")), "chunk over the cap must be refused")
	assert.True(t, p.Overflowed())
	require.True(t, p.Enqueue([]byte("ghij")), "chunk that fits exactly is accepted")
	assert.Equal(t, int64(10), p.Stats().Bytes)

	require.NoError(t, p.Start())
	p.Finish()
	p.Wait()

	require.NoError(t, p.Reset())
	assert.False(t, p.Overflowed())
	assert.True(t, p.Enqueue([]byte("0123456789")), "reset frees the queued bytes")
}

func TestPipeline_NegativeCapIsUnbounded(t *testing.T) {
	p := New(Config{MaxQueuedBytes: -1})
	big := make([]byte, DefaultMaxQueuedBytes+1)
	assert.True(t, p.Enqueue(big))
	assert.False(t, p.Overflowed())
	p.Discard()
}

func TestPipeline_LifecycleErrors(t *testing.T) {
	gate := make(chan struct{})
	p := New(Config{OnGroup: func(types.MessageGroup) { <-gate }})
	require.NoError(t, p.Start())
	assert.ErrorIs(t, p.Start(), ErrNotIdle)

	p.Enqueue([]byte("--- Module:   a.c (C)\n<m><f>a.c</f><l>1</l><t>Info</t><n>1</n><d>x</d></m>\n</doc>"))
	p.Finish()
	assert.ErrorIs(t, p.Reset(), ErrNotClosed)

	close(gate)
	p.Wait()
	assert.NoError(t, p.Reset())
}

func TestPipeline_EmptyChunkAccepted(t *testing.T) {
	p := New(Config{})
	assert.True(t, p.Enqueue(nil))
	assert.Zero(t, p.Stats().Chunks)
	p.Discard()
}

func TestPipeline_ConcurrentProducerStats(t *testing.T) {
	var out groupCollector
	p := New(Config{OnGroup: out.add})
	require.NoError(t, p.Start())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				p.Enqueue([]byte("noise "))
			}
		}()
	}
	wg.Wait()
	p.Finish()
	p.Wait()

	assert.Equal(t, int64(400), p.Stats().Chunks)
	assert.Empty(t, out.snapshot())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "draining", StateDraining.String())
	assert.Equal(t, "finished", StateFinished.String())
}
