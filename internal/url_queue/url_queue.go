package urlqueue

// Queue is a FIFO of candidate URLs with an enqueue-at-most-once guarantee:
// a URL that has ever been added (even if since dequeued) is never added
// again.
type Queue struct {
	seen  map[string]bool
	items []string
}

func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Add enqueues the URL unless it was ever enqueued before. Reports whether
// the URL was accepted.
func (q *Queue) Add(url string) bool {
	if q.seen[url] {
		return false
	}
	q.seen[url] = true
	q.items = append(q.items, url)
	return true
}

// Next dequeues the oldest URL. The second result is false when the queue is
// empty.
func (q *Queue) Next() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	url := q.items[0]
	q.items = q.items[1:]
	return url, true
}

func (q *Queue) Len() int {
	return len(q.items)
}

// Seen reports whether the URL was ever enqueued.
func (q *Queue) Seen(url string) bool {
	return q.seen[url]
}
