package rules

import "github.com/bnema/webkit-content-blocker/internal/models"

// ResourceTypeSet is a set of resource types. The empty set means all types.
type ResourceTypeSet uint32

// Add returns the set with rt added
func (s ResourceTypeSet) Add(rt models.ResourceType) ResourceTypeSet {
	return s | 1<<uint(rt)
}

// Has reports membership, ignoring the empty-means-all convention
func (s ResourceTypeSet) Has(rt models.ResourceType) bool {
	return s&(1<<uint(rt)) != 0
}

// Allows reports whether a request of type rt satisfies the constraint
func (s ResourceTypeSet) Allows(rt models.ResourceType) bool {
	return s == 0 || s.Has(rt)
}

// LoadTypeSet is a set of load types. The empty set means both.
type LoadTypeSet uint8

// Add returns the set with lt added
func (s LoadTypeSet) Add(lt models.LoadType) LoadTypeSet {
	return s | 1<<uint(lt)
}

// Allows reports whether a request with the given party classification satisfies the constraint
func (s LoadTypeSet) Allows(thirdParty bool) bool {
	if s == 0 {
		return true
	}
	lt := models.LoadFirstParty
	if thirdParty {
		lt = models.LoadThirdParty
	}
	return s&(1<<uint(lt)) != 0
}

// LoadContextSet is a set of load contexts. The empty set means both.
type LoadContextSet uint8

// Add returns the set with lc added
func (s LoadContextSet) Add(lc models.LoadContext) LoadContextSet {
	return s | 1<<uint(lc)
}

// Allows reports whether a request with the given frame classification satisfies the constraint
func (s LoadContextSet) Allows(mainFrame bool) bool {
	if s == 0 {
		return true
	}
	lc := models.LoadChildFrame
	if mainFrame {
		lc = models.LoadTopFrame
	}
	return s&(1<<uint(lc)) != 0
}
