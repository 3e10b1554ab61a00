package eventprocessor

// IC tags counted by Counters.
const (
	TagLoadIC       = "LoadIC"
	TagStoreIC      = "StoreIC"
	TagKeyedLoadIC  = "KeyedLoadIC"
	TagKeyedStoreIC = "KeyedStoreIC"
)

// ICTags lists the counted IC tags in summary order.
var ICTags = []string{TagLoadIC, TagStoreIC, TagKeyedLoadIC, TagKeyedStoreIC}

// Counters tallies inline-cache events by kind.
type Counters struct {
	Load       int
	Store      int
	KeyedLoad  int
	KeyedStore int
}

// Record increments the counter for an IC tag and reports whether tag was one.
func (c *Counters) Record(tag string) bool {
	switch tag {
	case TagLoadIC:
		c.Load++
	case TagStoreIC:
		c.Store++
	case TagKeyedLoadIC:
		c.KeyedLoad++
	case TagKeyedStoreIC:
		c.KeyedStore++
	default:
		return false
	}
	return true
}

// Total returns the sum of all counters.
func (c *Counters) Total() int {
	return c.Load + c.Store + c.KeyedLoad + c.KeyedStore
}

// Merge adds other's counts into c.
func (c *Counters) Merge(other Counters) {
	c.Load += other.Load
	c.Store += other.Store
	c.KeyedLoad += other.KeyedLoad
	c.KeyedStore += other.KeyedStore
}
