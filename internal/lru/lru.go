// Package lru provides an intrusive least-recently-used list.
//
// The list is not thread-safe; callers must handle synchronization.
package lru

// Node is an element of a List. The node stores its key so that the owner
// can delete the matching map entry in O(1) when the node is evicted.
type Node[K comparable, V any] struct {
	Key   K
	Value V

	prev, next *Node[K, V]
	list       *List[K, V]
}

// List is a doubly-linked list ordered by recency of use.
// The front is the most recently used node, the back the least.
// The zero value is an empty list.
type List[K comparable, V any] struct {
	head *Node[K, V]
	tail *Node[K, V]
	len  int
}

// Len returns the number of nodes in the list.
func (l *List[K, V]) Len() int {
	return l.len
}

// PushFront adds a new node at the front and returns it.
func (l *List[K, V]) PushFront(key K, value V) *Node[K, V] {
	n := &Node[K, V]{Key: key, Value: value}
	l.linkFront(n)
	return n
}

// MoveToFront marks n as most recently used. Nodes of other lists are
// ignored.
func (l *List[K, V]) MoveToFront(n *Node[K, V]) {
	if n == nil || n.list != l || n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

// Remove unlinks n. It reports whether n was in the list.
func (l *List[K, V]) Remove(n *Node[K, V]) bool {
	if n == nil || n.list != l {
		return false
	}
	l.unlink(n)
	return true
}

// Back returns the least recently used node, or nil if the list is empty.
func (l *List[K, V]) Back() *Node[K, V] {
	return l.tail
}

// RemoveBack unlinks and returns the least recently used node, or nil if
// the list is empty.
func (l *List[K, V]) RemoveBack() *Node[K, V] {
	n := l.tail
	if n != nil {
		l.unlink(n)
	}
	return n
}

// Newer returns the next more recently used node, or nil at the front.
func (n *Node[K, V]) Newer() *Node[K, V] {
	return n.prev
}

// InList reports whether n is currently linked into a list.
func (n *Node[K, V]) InList() bool {
	return n.list != nil
}

func (l *List[K, V]) linkFront(n *Node[K, V]) {
	n.list = l
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

func (l *List[K, V]) unlink(n *Node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	n.list = nil
	l.len--
}
