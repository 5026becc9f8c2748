package state

import (
	"encoding/binary"
	"fmt"
	"math"
)

type rawStore interface {
	get(key string) ([]byte, error)
	set(key string, val []byte)
}

// ProjectQueue is the FIFO of project proposal indices waiting for a
// decision. The head only moves forward; slots behind it are never reused.
type ProjectQueue struct {
	store  rawStore
	head   *uint32
	length *uint32
}

func newProjectQueue(store rawStore, head, length *uint32) *ProjectQueue {
	return &ProjectQueue{store: store, head: head, length: length}
}

func (q *ProjectQueue) Len() uint32 {
	return *q.length
}

func (q *ProjectQueue) slot(pos uint32) string {
	return fmt.Sprintf(KeyQueueEntry, pos)
}

func (q *ProjectQueue) at(pos uint32) (uint32, error) {
	val, err := q.store.get(q.slot(pos))
	if err != nil {
		return 0, err
	}
	if len(val) != 4 {
		return 0, fmt.Errorf("%w: queue slot %d", ErrInvariantBroken, pos)
	}
	return binary.BigEndian.Uint32(val), nil
}

func (q *ProjectQueue) Push(index uint32) error {
	if uint64(*q.head)+uint64(*q.length) >= math.MaxUint32 {
		return ErrOverflow
	}
	pos := *q.head + *q.length
	q.store.set(q.slot(pos), binary.BigEndian.AppendUint32(nil, index))
	*q.length++
	return nil
}

func (q *ProjectQueue) Front() (uint32, error) {
	if *q.length == 0 {
		return 0, ErrQueueEmpty
	}
	return q.at(*q.head)
}

func (q *ProjectQueue) Back() (uint32, error) {
	if *q.length == 0 {
		return 0, ErrQueueEmpty
	}
	return q.at(*q.head + *q.length - 1)
}

func (q *ProjectQueue) Pop() (uint32, error) {
	idx, err := q.Front()
	if err != nil {
		return 0, err
	}
	*q.head++
	*q.length--
	return idx, nil
}

func (q *ProjectQueue) Entries() ([]uint32, error) {
	out := make([]uint32, 0, *q.length)
	for i := uint32(0); i < *q.length; i++ {
		idx, err := q.at(*q.head + i)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
