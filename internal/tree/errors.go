package tree

import "errors"

var (
	// ErrPreviewMode is returned for edits on a preview tree.
	ErrPreviewMode = errors.New("preview tree is read-only")
	// ErrReadOnly is returned for edits on nodes the user cannot change.
	ErrReadOnly = errors.New("node is read-only")
	// ErrTerminalNode is returned when adding below a node that cannot have
	// children, such as an explicit "None" marker.
	ErrTerminalNode = errors.New("node cannot have children")
	// ErrUnknownGroup is returned when a linked group does not exist.
	ErrUnknownGroup = errors.New("unknown linked group")
	// ErrForeignNode is returned for nodes that do not belong to the tree.
	ErrForeignNode = errors.New("node is not part of this tree")
)
