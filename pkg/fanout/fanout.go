// Package fanout joins N independent operations, keeping only the first
// error. The installer uses it for the post-extraction tasks and for
// the per-architecture library downloads.
package fanout

import "sync"

// Group runs functions concurrently and waits for all of them. The
// first error wins; later errors are discarded. The zero value is
// ready to use.
type Group struct {
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// Go launches fn in its own goroutine.
func (g *Group) Go(fn func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := fn(); err != nil {
			g.once.Do(func() { g.err = err })
		}
	}()
}

// Wait blocks until every launched function has settled and returns the
// first recorded error, if any.
func (g *Group) Wait() error {
	g.wg.Wait()
	return g.err
}
