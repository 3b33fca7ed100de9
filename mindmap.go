package main

import (
	"fmt"
	"time"
)

// NewMap creates a map holding only its root node.
func NewMap(ids *IDAllocator, title, description, bgColor string, now time.Time) *Map {
	rootID := ids.Next()
	root := &Node{
		ID:          rootID,
		Title:       title,
		Description: description,
		Children:    []NodeID{},
		Color:       defaultNodeColor,
	}
	return &Map{
		ID:          fmt.Sprintf("map_%d", now.UnixMilli()),
		Title:       title,
		Description: description,
		BgColor:     bgColor,
		RootID:      rootID,
		Nodes:       map[NodeID]*Node{rootID: root},
	}
}

func (m *Map) node(id NodeID) (*Node, error) {
	n, ok := m.Nodes[id]
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// ChildrenOf returns a copy of the ordered child list of id.
func (m *Map) ChildrenOf(id NodeID) []NodeID {
	n, ok := m.Nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, len(n.Children))
	copy(out, n.Children)
	return out
}

// AncestorsOf returns the parent chain of id, nearest first.
func (m *Map) AncestorsOf(id NodeID) []NodeID {
	var out []NodeID
	n, ok := m.Nodes[id]
	for ok && n.ParentID != "" && len(out) < len(m.Nodes) {
		out = append(out, n.ParentID)
		n, ok = m.Nodes[n.ParentID]
	}
	return out
}

func (m *Map) Depth(id NodeID) int {
	return len(m.AncestorsOf(id))
}

// SubtreeIDs collects id and all of its descendants in pre-order.
func (m *Map) SubtreeIDs(id NodeID) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(cur NodeID) {
		n, ok := m.Nodes[cur]
		if !ok {
			return
		}
		out = append(out, cur)
		for _, cid := range n.Children {
			walk(cid)
		}
	}
	walk(id)
	return out
}

func (m *Map) newChild(ids *IDAllocator, parent *Node) *Node {
	color := parent.Color
	if color == "" {
		color = defaultNodeColor
	}
	return &Node{
		ID:       ids.Next(),
		Title:    defaultNodeTitle,
		ParentID: parent.ID,
		Children: []NodeID{},
		Color:    color,
	}
}

// AddChild appends a fresh node under parentID and expands the parent so the
// new node is visible.
func (m *Map) AddChild(ids *IDAllocator, parentID NodeID) (AddNodeData, error) {
	parent, err := m.node(parentID)
	if err != nil {
		return AddNodeData{}, err
	}
	child := m.newChild(ids, parent)
	m.Nodes[child.ID] = child
	parent.Children = append(parent.Children, child.ID)
	expanded := parent.Collapsed
	parent.Collapsed = false
	return AddNodeData{ID: child.ID, ParentID: parentID, Node: child.Clone(), ExpandedParent: expanded}, nil
}

// AddSibling appends a fresh node next to nodeID. Siblings of the root are
// added as children of the root. The parent's collapsed flag is left alone.
func (m *Map) AddSibling(ids *IDAllocator, nodeID NodeID) (AddNodeData, error) {
	n, err := m.node(nodeID)
	if err != nil {
		return AddNodeData{}, err
	}
	parentID := n.ParentID
	if parentID == "" {
		parentID = m.RootID
	}
	parent, err := m.node(parentID)
	if err != nil {
		return AddNodeData{}, err
	}
	sibling := m.newChild(ids, parent)
	m.Nodes[sibling.ID] = sibling
	parent.Children = append(parent.Children, sibling.ID)
	return AddNodeData{ID: sibling.ID, ParentID: parentID, Node: sibling.Clone()}, nil
}

func (m *Map) EditNode(id NodeID, patch NodePatch) (EditNodeData, error) {
	n, err := m.node(id)
	if err != nil {
		return EditNodeData{}, err
	}
	prev := n.fields()
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	return EditNodeData{ID: id, Previous: prev, Next: n.fields()}, nil
}

// ToggleCollapse flips only id's own flag; nested collapse state is kept.
func (m *Map) ToggleCollapse(id NodeID) error {
	n, err := m.node(id)
	if err != nil {
		return err
	}
	n.Collapsed = !n.Collapsed
	return nil
}

// DeleteSubtree removes id and every descendant. The removed nodes are
// returned so the deletion can be reverted.
func (m *Map) DeleteSubtree(id NodeID) (DeleteSubtreeData, error) {
	n, err := m.node(id)
	if err != nil {
		return DeleteSubtreeData{}, err
	}
	if id == m.RootID || n.ParentID == "" {
		return DeleteSubtreeData{}, ErrRootDeletion
	}
	subtree := make(map[NodeID]*Node)
	for _, sid := range m.SubtreeIDs(id) {
		subtree[sid] = m.Nodes[sid]
		delete(m.Nodes, sid)
	}
	m.removeChild(n.ParentID, id)
	return DeleteSubtreeData{ParentID: n.ParentID, SubtreeRootID: id, Subtree: subtree}, nil
}

func (m *Map) appendChild(parentID, childID NodeID) {
	parent, ok := m.Nodes[parentID]
	if !ok {
		return
	}
	for _, cid := range parent.Children {
		if cid == childID {
			return
		}
	}
	parent.Children = append(parent.Children, childID)
}

func (m *Map) removeChild(parentID, childID NodeID) {
	parent, ok := m.Nodes[parentID]
	if !ok {
		return
	}
	kept := make([]NodeID, 0, len(parent.Children))
	for _, cid := range parent.Children {
		if cid != childID {
			kept = append(kept, cid)
		}
	}
	parent.Children = kept
}

func (m *Map) setFields(id NodeID, f NodeFields) {
	n, ok := m.Nodes[id]
	if !ok {
		return
	}
	n.Title = f.Title
	n.Description = f.Description
	n.Color = f.Color
}

// setNodeUI merges ui into the node's display-intent flags.
func (m *Map) setNodeUI(id NodeID, ui NodeUI) error {
	n, err := m.node(id)
	if err != nil {
		return err
	}
	if n.UI == nil {
		n.UI = &NodeUI{}
	}
	if ui.IsExpanded != nil {
		v := *ui.IsExpanded
		n.UI.IsExpanded = &v
	}
	return nil
}

// collapseAll collapses every non-root node with children, remembering in
// ui.isExpanded whether it was open before.
func (m *Map) collapseAll() {
	for _, id := range m.SubtreeIDs(m.RootID) {
		n := m.Nodes[id]
		if id == m.RootID || len(n.Children) == 0 {
			continue
		}
		open := !n.Collapsed
		if n.UI == nil {
			n.UI = &NodeUI{}
		}
		n.UI.IsExpanded = &open
		n.Collapsed = true
	}
}

// expandAll undoes collapseAll: nodes with a remembered state get it back,
// the rest are opened.
func (m *Map) expandAll() {
	for _, id := range m.SubtreeIDs(m.RootID) {
		n := m.Nodes[id]
		if n.UI != nil && n.UI.IsExpanded != nil {
			n.Collapsed = !*n.UI.IsExpanded
			n.UI.IsExpanded = nil
			if *n.UI == (NodeUI{}) {
				n.UI = nil
			}
			continue
		}
		n.Collapsed = false
	}
}
