package scoring

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Harshitk-cp/ise/internal/domain"
)

var (
	ErrCycle             = errors.New("argument references its own ancestor")
	ErrDepthExceeded     = errors.New("argument tree exceeds max depth")
	ErrOrphanArgument    = errors.New("argument parent does not exist")
	ErrDuplicateArgument = errors.New("duplicate argument id")
)

// Tree is a validated, acyclic argument tree. Arguments with ParentID zero
// hang directly off the root claim and sit at depth 0.
type Tree struct {
	RootID   int64
	MaxDepth int

	args     map[int64]*domain.Argument
	children map[int64][]int64
	depth    map[int64]int
}

// BuildTree indexes arguments by parent and rejects cycles, orphans, and
// trees nested deeper than maxDepth.
func BuildTree(rootID int64, arguments []domain.Argument, maxDepth int) (*Tree, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{
		RootID:   rootID,
		MaxDepth: maxDepth,
		args:     make(map[int64]*domain.Argument, len(arguments)),
		children: make(map[int64][]int64),
		depth:    make(map[int64]int, len(arguments)),
	}

	for i := range arguments {
		a := arguments[i]
		if a.ID == 0 {
			return nil, fmt.Errorf("%w: argument id must be non-zero", ErrOrphanArgument)
		}
		if _, dup := t.args[a.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateArgument, a.ID)
		}
		t.args[a.ID] = &a
	}

	for id, a := range t.args {
		if a.ParentID != 0 {
			if _, ok := t.args[a.ParentID]; !ok {
				return nil, fmt.Errorf("%w: argument %d has parent %d", ErrOrphanArgument, id, a.ParentID)
			}
		}
		t.children[a.ParentID] = append(t.children[a.ParentID], id)
	}
	for _, ids := range t.children {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	for id := range t.args {
		d, err := t.walkDepth(id)
		if err != nil {
			return nil, err
		}
		if d > maxDepth {
			return nil, fmt.Errorf("%w: argument %d at depth %d (max %d)", ErrDepthExceeded, id, d, maxDepth)
		}
	}

	return t, nil
}

// walkDepth follows parent links up to the root, memoizing depths.
func (t *Tree) walkDepth(id int64) (int, error) {
	var path []int64
	seen := make(map[int64]bool)
	cur := id
	base := -1
	for cur != 0 {
		if d, ok := t.depth[cur]; ok {
			base = d
			break
		}
		if seen[cur] {
			return 0, fmt.Errorf("%w: argument %d", ErrCycle, cur)
		}
		seen[cur] = true
		path = append(path, cur)
		cur = t.args[cur].ParentID
	}
	for i := len(path) - 1; i >= 0; i-- {
		base++
		t.depth[path[i]] = base
	}
	return t.depth[id], nil
}

// Len is the number of arguments in the tree.
func (t *Tree) Len() int {
	return len(t.args)
}

// Argument returns the argument with the given id.
func (t *Tree) Argument(id int64) (*domain.Argument, bool) {
	a, ok := t.args[id]
	return a, ok
}

// Depth returns the distance of an argument from the root claim.
func (t *Tree) Depth(id int64) int {
	return t.depth[id]
}

// Children returns the ids of the arguments whose parent is id, ascending.
func (t *Tree) Children(id int64) []int64 {
	return t.children[id]
}

// Ancestors returns the chain of parent ids from id up to, but excluding, the root.
func (t *Tree) Ancestors(id int64) []int64 {
	var out []int64
	a, ok := t.args[id]
	for ok && a.ParentID != 0 {
		out = append(out, a.ParentID)
		a, ok = t.args[a.ParentID]
	}
	return out
}

// CheckInsertion verifies that adding childID under parentID keeps the tree
// acyclic and within MaxDepth. parentID zero means the root claim.
func (t *Tree) CheckInsertion(parentID, childID int64) error {
	if childID != 0 && childID == parentID {
		return fmt.Errorf("%w: argument %d cannot be its own parent", ErrCycle, childID)
	}
	depth := 0
	if parentID != 0 {
		if _, ok := t.args[parentID]; !ok {
			return fmt.Errorf("%w: parent %d", ErrOrphanArgument, parentID)
		}
		for _, anc := range t.Ancestors(parentID) {
			if anc == childID {
				return fmt.Errorf("%w: argument %d is an ancestor of %d", ErrCycle, childID, parentID)
			}
		}
		depth = t.depth[parentID] + 1
	}
	if childID != 0 {
		if _, exists := t.args[childID]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateArgument, childID)
		}
	}
	if depth > t.MaxDepth {
		return fmt.Errorf("%w: depth %d (max %d)", ErrDepthExceeded, depth, t.MaxDepth)
	}
	return nil
}

// NextDepth is the depth a new argument under parentID would have.
func (t *Tree) NextDepth(parentID int64) int {
	if parentID == 0 {
		return 0
	}
	return t.depth[parentID] + 1
}
