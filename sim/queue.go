// Implements the WaitQueue, which holds vehicles that found no eligible cell.
// Vehicles are enqueued on a failed allocation and only the head is retried.

package sim

import (
	"strings"
)

// WaitQueue represents a FIFO queue of vehicles waiting for a parking cell.
type WaitQueue struct {
	queue []*Vehicle
}

// Enqueue adds a vehicle to the back of the wait queue.
func (wq *WaitQueue) Enqueue(v *Vehicle) {
	wq.queue = append(wq.queue, v)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range wq.queue {
		sb.WriteString(v.Tag)
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of vehicles in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the vehicle at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Vehicle {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (wq *WaitQueue) Items() []*Vehicle {
	return wq.queue
}

// Dequeue removes the vehicle at the front of the queue.
func (wq *WaitQueue) Dequeue() *Vehicle {
	if len(wq.queue) == 0 {
		return nil
	}
	v := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return v
}

// Tags returns the queued tags, head first.
func (wq *WaitQueue) Tags() []string {
	tags := make([]string, len(wq.queue))
	for i, v := range wq.queue {
		tags[i] = v.Tag
	}
	return tags
}

// Contains reports whether a vehicle with this tag is waiting.
func (wq *WaitQueue) Contains(tag string) bool {
	for _, v := range wq.queue {
		if v.Tag == tag {
			return true
		}
	}
	return false
}
