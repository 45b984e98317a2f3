package internal

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/radovskyb/watcher"
)

var (
	debounceDuration = 500 * time.Millisecond
	pollInterval     = 250 * time.Millisecond
)

// notifier collapses a burst of notify calls into a single call of out.
type notifier struct {
	out      func()
	delay    time.Duration
	notified bool
	lock     sync.Mutex
}

func (n *notifier) notify() {
	n.lock.Lock()
	defer n.lock.Unlock()
	if !n.notified {
		n.notified = true
		go func() {
			time.Sleep(n.delay)
			n.out()
			n.lock.Lock()
			defer n.lock.Unlock()
			n.notified = false
		}()
	}
}

// Watch polls paths (directories recursively) and calls onChange once per
// burst of changes. Changes below any of the ignore prefixes are dropped.
// It blocks until ctx is done.
func Watch(ctx context.Context, logger *log.Logger, paths, ignore []string, onChange func()) error {
	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = w.AddRecursive(p)
		} else {
			err = w.Add(p)
		}
		if err != nil {
			return err
		}
	}

	n := &notifier{out: onChange, delay: debounceDuration}
	started := make(chan error, 1)
	go func() {
		started <- w.Start(pollInterval)
	}()
	w.Wait()
	defer func() {
		go func() {
			for {
				select {
				case <-w.Event:
				case <-w.Error:
				case <-w.Closed:
					return
				}
			}
		}()
		w.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-w.Event:
			if ignored(e.Path, ignore) {
				continue
			}
			logger.Debug("change detected", "op", e.Op, "path", e.Path)
			n.notify()
		case err := <-w.Error:
			if errors.Is(err, watcher.ErrWatchedFileDeleted) {
				logger.Warn("watched path deleted")
				continue
			}
			return err
		case err := <-started:
			return err
		}
	}
}

func ignored(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
