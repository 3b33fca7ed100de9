package main

import (
	"fmt"
	"regexp"
	"strconv"
)

var nodeIDPattern = regexp.MustCompile(`^n_(\d+)$`)

// IDAllocator hands out node ids for one editing session. Ids are never
// reused: Reseed only ever moves the counter forward.
type IDAllocator struct {
	next int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

func (a *IDAllocator) Next() NodeID {
	id := NodeID(fmt.Sprintf("%s%d", idPrefix, a.next))
	a.next++
	return id
}

// Reseed bumps the counter past the largest numeric suffix found in m.
func (a *IDAllocator) Reseed(m *Map) {
	if m == nil {
		return
	}
	maxID := 0
	for id := range m.Nodes {
		match := nodeIDPattern.FindStringSubmatch(string(id))
		if match == nil {
			continue
		}
		v, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if v > maxID {
			maxID = v
		}
	}
	if maxID >= a.next {
		a.next = maxID + 1
	}
}
