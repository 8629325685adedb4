package refptr

// A control block is the shared bookkeeping for one managed object. It
// carries the strong and weak counters and the single variant-specific
// operation, destroying the payload. Strong and Weak handles only ever
// talk to it through this interface, so neither needs to know how the
// payload was allocated.
type controlBlock interface {
	// destroyObject releases the payload. Called exactly once, when the
	// strong count drops to zero.
	destroyObject()

	header() *blockHeader
}

// blockHeader holds the counters shared by both block variants.
//
// Counters are plain ints. The library is single-threaded by contract;
// mutating one block from multiple goroutines without external
// synchronization is undefined.
type blockHeader struct {
	strong  int32
	weak    int32
	retired bool
}

func (h *blockHeader) header() *blockHeader { return h }

var liveBlocks int64

// LiveBlocks reports how many control blocks exist that have not yet been
// retired. Useful for leak checks: it returns to its previous value once
// every strong and weak handle created since has been released.
func LiveBlocks() int64 {
	return liveBlocks
}

func trackBlock() {
	liveBlocks++
}

func retain(cb controlBlock) {
	h := cb.header()
	if h.strong <= 0 {
		panic("inc zero refs")
	}
	h.strong++
}

func release(cb controlBlock) {
	h := cb.header()
	if h.strong <= 0 {
		panic("dec zero refs")
	}
	h.strong--
	if h.strong == 0 {
		cb.destroyObject()
	}
	if h.strong == 0 && h.weak == 0 {
		retire(h)
	}
}

func retainWeak(cb controlBlock) {
	h := cb.header()
	if h.retired {
		panic("inc weak refs on retired block")
	}
	h.weak++
}

func releaseWeak(cb controlBlock) {
	h := cb.header()
	if h.weak <= 0 {
		panic("dec zero weak refs")
	}
	h.weak--
	if h.weak == 0 && h.strong == 0 {
		retire(h)
	}
}

// retire marks the block as dead bookkeeping. Freeing the memory itself is
// the garbage collector's job; the accounting here is what makes block
// reclamation observable.
func retire(h *blockHeader) {
	if h.retired {
		panic("block retired twice")
	}
	h.retired = true
	liveBlocks--
}

func expired(cb controlBlock) bool {
	return cb.header().strong == 0
}

func strongCount(cb controlBlock) int {
	return int(cb.header().strong)
}

func weakCount(cb controlBlock) int {
	return int(cb.header().weak)
}
