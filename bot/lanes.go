package bot

import "sync"

// lanes runs jobs FIFO and one at a time per user, while jobs of different
// users run concurrently. A lane goroutine exits once its queue is empty.
type lanes struct {
	mtx    sync.Mutex
	queues map[int64][]func()
	wg     *sync.WaitGroup
}

func newLanes(wg *sync.WaitGroup) *lanes {
	return &lanes{
		queues: make(map[int64][]func()),
		wg:     wg,
	}
}

func (l *lanes) submit(id int64, job func()) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	// a key in the map means a goroutine is draining that lane
	if queue, running := l.queues[id]; running {
		l.queues[id] = append(queue, job)
		return
	}
	l.queues[id] = []func(){job}
	l.wg.Add(1)
	go l.drain(id)
}

func (l *lanes) drain(id int64) {
	defer l.wg.Done()
	for {
		l.mtx.Lock()
		queue := l.queues[id]
		if len(queue) == 0 {
			delete(l.queues, id)
			l.mtx.Unlock()
			return
		}
		job := queue[0]
		l.queues[id] = queue[1:]
		l.mtx.Unlock()
		job()
	}
}
