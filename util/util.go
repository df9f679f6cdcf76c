package util

import (
	"fmt"
	"sync"
)

// Counter is a thread safe monotonic natural number counter
type Counter struct {
	counter int
	mtx     *sync.Mutex
}

// NewCounter instantiates Counter
func NewCounter() *Counter {
	return &Counter{
		counter: 0,
		mtx:     new(sync.Mutex),
	}
}

// Next returns the next value
func (id *Counter) Next() int {
	id.mtx.Lock()
	defer id.mtx.Unlock()

	cur := id.counter
	id.counter = id.counter + 1

	return cur
}

// NextID returns the next value formatted with the prefix, counting from 1
func (id *Counter) NextID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, id.Next()+1)
}
