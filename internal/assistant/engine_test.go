package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginePriceShortCircuit(t *testing.T) {
	e := NewEngine(testProducts())
	prev := Conversation{LastProducts: []string{"Aurora Headphones"}}

	res, next := e.Answer(prev, "price of zzzz")
	assert.Equal(t, ReplyNoPricing, res.Reply)
	assert.NotNil(t, res.Products)
	assert.Empty(t, res.Products)
	assert.Empty(t, next.LastProducts)

	res, next = e.Answer(Conversation{}, "How much is the Aurora?")
	assert.Equal(t, []string{"Aurora Headphones"}, productNames(res.Products))
	assert.Equal(t, []string{"Aurora Headphones"}, next.LastProducts)
}

func TestEngineComparison(t *testing.T) {
	e := NewEngine(testProducts())

	res, next := e.Answer(Conversation{}, "Compare Aurora and Comet")
	assert.Equal(t, "Here is a detailed comparison:\n"+
		"• Aurora Headphones: costs ₹4999, comes with 2 Year warranty.\n"+
		"• Comet Earbuds: costs ₹2999, comes with 1 Year warranty.\n\n"+
		"Summary:\nAurora Headphones is better for premium features, while Comet Earbuds is more budget-friendly.", res.Reply)
	assert.Equal(t, []string{"Aurora Headphones", "Comet Earbuds"}, productNames(res.Products))
	assert.Equal(t, []string{"Aurora Headphones", "Comet Earbuds"}, next.LastProducts)

	res, _ = e.Answer(Conversation{}, "compare aurora")
	assert.Equal(t, ReplyNeedTwo, res.Reply)
	assert.Empty(t, res.Products)
}

func TestEngineMemoryRoundTrip(t *testing.T) {
	e := NewEngine(testProducts())

	res, conv := e.Answer(Conversation{}, "best earbuds under 3000")
	require.Equal(t, []string{"Comet Earbuds", "Dash Earbuds"}, productNames(res.Products))

	res, conv = e.Answer(conv, "when is shipping?")
	index := testIndex()
	assert.Equal(t, index[2].Content+" "+index[3].Content, res.Reply)
	assert.Empty(t, res.Products)
	assert.Equal(t, []string{"Comet Earbuds", "Dash Earbuds"}, conv.LastProducts)

	// A miss on a non-follow-up intent clears the memory.
	_, conv = e.Answer(conv, "qqqqqqqqqq")
	assert.Empty(t, conv.LastProducts)
	res, _ = e.Answer(conv, "when is shipping?")
	assert.Equal(t, ReplyNoResults, res.Reply)
}

func TestEngineRepeatedQueryIsStable(t *testing.T) {
	e := NewEngine(testProducts())
	for _, msg := range []string{"best earbuds under 3000", "price of breeze", "compare aurora and comet", "when is shipping", "???"} {
		first, conv := e.Answer(Conversation{LastProducts: []string{"Orb"}}, msg)
		second, _ := e.Answer(conv, msg)
		if msg == "when is shipping" {
			// First run falls back to Orb, and so does the repeat.
			assert.Equal(t, []string{"Orb"}, conv.LastProducts)
		}
		assert.Equal(t, first, second, msg)
	}
}

func TestEngineBlankInput(t *testing.T) {
	e := NewEngine(testProducts())
	for _, msg := range []string{"", "   ", "?!"} {
		res, next := e.Answer(Conversation{}, msg)
		assert.Equal(t, ReplyNoResults, res.Reply)
		assert.Empty(t, res.Products)
		assert.Empty(t, next.LastProducts)
	}
}

func TestEngineWithCustomClassifier(t *testing.T) {
	c := NewClassifier([]Rule{{Intent: IntentRecommendation, Keywords: []string{"cheap"}}})
	e := NewEngine(testProducts(), WithClassifier(c), WithLogger(zerolog.Nop()))

	res, _ := e.Answer(Conversation{}, "cheap earbuds")
	assert.Equal(t, []string{"Comet Earbuds", "Dash Earbuds"}, productNames(res.Products))
	assert.Equal(t, 7, e.Size())
	assert.Len(t, e.Products(), 7)
}

type mapStore struct {
	mu     sync.Mutex
	convs  map[string]Conversation
	getErr error
	putErr error
}

func newMapStore() *mapStore {
	return &mapStore{convs: make(map[string]Conversation)}
}

func (m *mapStore) Get(ctx context.Context, sessionID string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return Conversation{}, m.getErr
	}
	return m.convs[sessionID], nil
}

func (m *mapStore) Put(ctx context.Context, sessionID string, conv Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.convs[sessionID] = conv
	return nil
}

func TestServiceKeepsSessionsApart(t *testing.T) {
	store := newMapStore()
	svc := NewService(NewEngine(testProducts()), store, zerolog.Nop())
	ctx := context.Background()

	svc.Ask(ctx, "alice", "best earbuds under 3000")
	svc.Ask(ctx, "bob", "suggest a speaker")

	res := svc.Ask(ctx, "alice", "when is shipping")
	assert.Contains(t, res.Reply, "Comet Earbuds")
	res = svc.Ask(ctx, "bob", "when is shipping")
	assert.Contains(t, res.Reply, "Echo Speaker")
	assert.NotContains(t, res.Reply, "Comet")
}

func TestServiceSurvivesStoreFailures(t *testing.T) {
	store := newMapStore()
	store.getErr = errors.New("down")
	store.putErr = errors.New("down")
	svc := NewService(NewEngine(testProducts()), store, zerolog.Nop())

	res := svc.Ask(context.Background(), "s1", "price of aurora")
	assert.Equal(t, []string{"Aurora Headphones"}, productNames(res.Products))
}

func TestServiceConcurrentSessions(t *testing.T) {
	store := newMapStore()
	svc := NewService(NewEngine(testProducts()), store, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := "even"
			msg := "best earbuds under 3000"
			if i%2 == 1 {
				sid, msg = "odd", "suggest a speaker"
			}
			svc.Ask(ctx, sid, msg)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"Comet Earbuds", "Dash Earbuds"}, store.convs["even"].LastProducts)
	assert.Equal(t, []string{"Echo Speaker"}, store.convs["odd"].LastProducts)
	assert.Empty(t, svc.locks.held)
}
