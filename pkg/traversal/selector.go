package traversal

import (
	"github.com/gammazero/deque"
)

// BranchSelector walks the search tree, returning the next branch to offer
// the consumer, or nil when the tree is exhausted. Returned branches may be
// excluded by their evaluation; the traverser skips those.
type BranchSelector interface {
	Next(tc *TraversalContext) (*Branch, error)
}

// BranchOrdering creates the selector for one start vertex.
type BranchOrdering func(root *Branch) BranchSelector

// PreorderDepthFirst yields a branch before its children and descends into
// each child before moving to its next sibling.
func PreorderDepthFirst(root *Branch) BranchSelector {
	s := &preorderDepthFirst{}
	s.stack.PushBack(root)
	return s
}

// PreorderBreadthFirst yields the tree level by level.
func PreorderBreadthFirst(root *Branch) BranchSelector {
	return &preorderBreadthFirst{current: root}
}

// PostorderDepthFirst yields a branch only after all of its descendants.
func PostorderDepthFirst(root *Branch) BranchSelector {
	s := &postorderDepthFirst{}
	s.stack.PushBack(root)
	return s
}

type preorderDepthFirst struct {
	stack deque.Deque[*Branch]
}

func (s *preorderDepthFirst) Next(tc *TraversalContext) (*Branch, error) {
	for s.stack.Len() > 0 {
		top := s.stack.Back()
		next, err := top.Next(tc)
		if err != nil {
			return nil, err
		}
		switch {
		case next == nil:
			s.stack.PopBack()
		case next == top:
			// a root reporting itself
			if !next.Evaluation().Continues() {
				s.stack.PopBack()
			}
			return next, nil
		default:
			if next.Evaluation().Continues() {
				s.stack.PushBack(next)
			}
			return next, nil
		}
	}
	return nil, nil
}

type preorderBreadthFirst struct {
	current *Branch
	queue   deque.Deque[*Branch]
}

func (s *preorderBreadthFirst) Next(tc *TraversalContext) (*Branch, error) {
	for s.current != nil {
		next, err := s.current.Next(tc)
		if err != nil {
			return nil, err
		}
		switch {
		case next == nil:
			s.current = nil
			if s.queue.Len() > 0 {
				s.current = s.queue.PopFront()
			}
		case next == s.current:
			if !next.Evaluation().Continues() {
				s.current = nil
			}
			return next, nil
		default:
			if next.Evaluation().Continues() {
				s.queue.PushBack(next)
			}
			return next, nil
		}
	}
	return nil, nil
}

type postorderDepthFirst struct {
	stack deque.Deque[*Branch]
}

func (s *postorderDepthFirst) Next(tc *TraversalContext) (*Branch, error) {
	for s.stack.Len() > 0 {
		top := s.stack.Back()
		next, err := top.Next(tc)
		if err != nil {
			return nil, err
		}
		switch {
		case next == nil:
			return s.stack.PopBack(), nil
		case next == top:
			if !next.Evaluation().Continues() {
				return s.stack.PopBack(), nil
			}
		case next.Evaluation().Continues():
			s.stack.PushBack(next)
		default:
			// a pruned child has no descendants to wait for
			return next, nil
		}
	}
	return nil, nil
}
