package exr

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// The global codec pool. Files take a reference when they are created; a
// pool replaced by SetGlobalThreadCount shuts down once its last file is
// closed.
var (
	poolMu     sync.Mutex
	poolOnce   sync.Once
	globalPool *codecPool
)

type codecPool struct {
	workers *workerpool.Pool // nil when threads is 0
	threads int
	refs    int
	retired bool
}

func newCodecPool(threads int) *codecPool {
	p := &codecPool{threads: threads}
	if threads > 0 {
		p.workers = workerpool.New(threads)
	}
	return p
}

// initPool seeds the pool size from EXR_THREADS.
func initPool() {
	poolOnce.Do(func() {
		n := 0
		if v := os.Getenv("EXR_THREADS"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 {
				logger.WithField("EXR_THREADS", v).Warn("ignoring invalid thread count")
			} else {
				n = parsed
			}
		}
		poolMu.Lock()
		globalPool = newCodecPool(n)
		poolMu.Unlock()
	})
}

// SetGlobalThreadCount sets how many worker goroutines chunk compression
// and decompression may use across all files. Zero disables parallel
// (de)compression. Files created afterwards use the new pool; files that
// are already open keep the pool they started with.
func SetGlobalThreadCount(n int) (err error) {
	defer guard("set global thread count", &err)
	if n < 0 || n > math.MaxInt32 {
		return &UnspecifiedError{
			Op:  "set global thread count",
			Msg: fmt.Sprintf("%v: %d", ErrInvalidThreadCount, n),
			Err: ErrInvalidThreadCount,
		}
	}
	initPool()
	poolMu.Lock()
	defer poolMu.Unlock()
	old := globalPool
	globalPool = newCodecPool(n)
	old.retired = true
	old.closeIfIdle()
	logger.WithField("threads", n).Debug("global thread count set")
	return nil
}

// GlobalThreadCount returns the current global thread count.
func GlobalThreadCount() int {
	initPool()
	poolMu.Lock()
	defer poolMu.Unlock()
	return globalPool.threads
}

// acquirePool returns the current pool with a reference held for the
// caller. It returns nil when threads is 0, which means serial work.
func acquirePool(threads int) *codecPool {
	if threads <= 0 {
		return nil
	}
	initPool()
	poolMu.Lock()
	defer poolMu.Unlock()
	globalPool.refs++
	return globalPool
}

func (p *codecPool) release() {
	if p == nil {
		return
	}
	poolMu.Lock()
	defer poolMu.Unlock()
	p.refs--
	p.closeIfIdle()
}

// closeIfIdle requires poolMu.
func (p *codecPool) closeIfIdle() {
	if p.retired && p.refs == 0 && p.workers != nil {
		p.workers.Close()
	}
}

// run calls fn for every index in [0, n) and returns the error of the
// lowest failing index. A panic in fn becomes that index's error.
func (p *codecPool) run(n int, fn func(i int) error) error {
	call := func(i int) (err error) {
		defer guard(fmt.Sprintf("chunk %d", i), &err)
		return fn(i)
	}
	if p == nil || p.workers == nil || n < 2 {
		for i := range n {
			if err := call(i); err != nil {
				return err
			}
		}
		return nil
	}
	errs := make([]error, n)
	p.workers.ParallelForAtomic(n, func(i int) {
		errs[i] = call(i)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
