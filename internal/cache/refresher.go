package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inklet/inklet/internal/repository"
	"github.com/inklet/inklet/pkg/logger"
)

// CountRefresher recomputes reaction counts from the database and rewrites
// the cache off the request path. Toggles enqueue the affected post id;
// a small worker pool drains the queue.
type CountRefresher struct {
	counts    *ReactionCounts
	reactions repository.ReactionRepository
	ch        chan string
}

func NewCountRefresher(counts *ReactionCounts, reactions repository.ReactionRepository, queueSize int) *CountRefresher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &CountRefresher{counts: counts, reactions: reactions, ch: make(chan string, queueSize)}
}

// Start launches the workers and returns a stop func that waits briefly for
// the queue to drain.
func (r *CountRefresher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case postID := <-r.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if n, err := r.reactions.CountForPost(ctx, postID); err == nil {
						r.counts.Set(ctx, postID, n)
					}
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(r.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Enqueue never blocks a request; a full queue just drops the warm-up and
// the next read repopulates the key.
func (r *CountRefresher) Enqueue(postID string) {
	select {
	case r.ch <- postID:
	default:
		logger.Warn("reaction count refresher queue full, drop", zap.String("post", postID))
	}
}

// QueueLen reports the current queue depth (sampled).
func (r *CountRefresher) QueueLen() int { return len(r.ch) }
