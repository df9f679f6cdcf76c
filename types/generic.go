package types

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// List[V] is a generic thread safe list
type List[V any] struct {
	elems []V
	lock  *sync.Mutex
}

// NewEmptyList[V] creates an empty List
func NewEmptyList[V any]() *List[V] {
	return &List[V]{
		elems: make([]V, 0),
		lock:  new(sync.Mutex),
	}
}

func (l *List[V]) Append(e V) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.elems = append(l.elems, e)
}

func (l *List[V]) Iter() []V {
	l.lock.Lock()
	defer l.lock.Unlock()

	res := make([]V, len(l.elems))
	copy(res, l.elems)
	return res
}

// Max[T] abstracts the max function for all ordered types T
func Max[T constraints.Ordered](one, two T) T {
	if one > two {
		return one
	}
	return two
}

// Min[T] abstracts the min function for all ordered types T
func Min[T constraints.Ordered](one, two T) T {
	if one < two {
		return one
	}
	return two
}

// Clamp[T] bounds v to [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return Max(lo, Min(v, hi))
}
