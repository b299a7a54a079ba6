package pegtree

import lru "github.com/hashicorp/golang-lru/v2"

// memoKey keeps applications where nodes are suppressed apart, the
// entries they leave carry no node.
type memoKey struct {
	matcher    Matcher
	index      int
	suppressed bool
}

type memoEntry struct {
	matched bool
	end     int
	node    *Node
}

// memoTable holds the outcomes of memoized matchers for a single
// run.  The size is bounded so pathological grammars can't grow it
// without limit; evicted entries are simply matched again.
type memoTable struct {
	cache *lru.Cache[memoKey, memoEntry]
	hits  int
}

func newMemoTable(size int) *memoTable {
	if size <= 0 {
		return nil
	}
	cache, err := lru.New[memoKey, memoEntry](size)
	if err != nil {
		return nil
	}
	return &memoTable{cache: cache}
}

func (t *memoTable) get(key memoKey) (memoEntry, bool) {
	e, ok := t.cache.Get(key)
	if ok {
		t.hits++
	}
	return e, ok
}

func (t *memoTable) put(key memoKey, e memoEntry) {
	t.cache.Add(key, e)
}
