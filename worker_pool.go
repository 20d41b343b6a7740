// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package streaksnake

import (
	"context"

	"github.com/sourcegraph/conc"
)

// WorkerPool runs work items on a fixed set of sessions, one worker goroutine
// per session, so a session is never shared between goroutines.
type WorkerPool struct {
	sessions  []Session
	workQueue chan func(Session)
	wg        *conc.WaitGroup
	ctx       context.Context
}

// NewWorkerPool starts one worker per session.
// Parameters:
//   - ctx: Context for cancellation
//   - sessions: Sessions owned by the pool's workers (not closed by the pool)
//   - queueSize: Buffer size for the work queue (blocks when full)
func NewWorkerPool(ctx context.Context, sessions []Session, queueSize int) *WorkerPool {
	wp := &WorkerPool{
		sessions:  sessions,
		workQueue: make(chan func(Session), queueSize),
		wg:        conc.NewWaitGroup(),
		ctx:       ctx,
	}

	for _, sess := range sessions {
		sess := sess
		wp.wg.Go(func() { wp.worker(sess) })
	}

	return wp
}

func (wp *WorkerPool) worker(sess Session) {
	for {
		select {
		case work, ok := <-wp.workQueue:
			if !ok {
				return
			}
			work(sess)

		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues a work item, blocking while the queue is full.
// Returns an error if the context is cancelled.
func (wp *WorkerPool) Submit(work func(Session)) error {
	select {
	case wp.workQueue <- work:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Close closes the queue and waits for the workers to finish.
func (wp *WorkerPool) Close() {
	close(wp.workQueue)
	wp.wg.Wait()
}
