package types

// WordCountRequest asks for the word count of one subtree, or of every root
// in binder order when no node is set. Values are immutable and comparable.
type WordCountRequest struct {
	nodeID       NodeID
	includeEmpty bool
}

// NewWordCountRequest builds a request for the subtree rooted at nodeID.
func NewWordCountRequest(nodeID NodeID, includeEmpty bool) WordCountRequest {
	return WordCountRequest{nodeID: nodeID, includeEmpty: includeEmpty}
}

// NewAllRootsRequest builds a request covering every top-level binder item.
func NewAllRootsRequest(includeEmpty bool) WordCountRequest {
	return WordCountRequest{includeEmpty: includeEmpty}
}

// NodeID returns the target node and whether one was set.
func (r WordCountRequest) NodeID() (NodeID, bool) {
	return r.nodeID, !r.nodeID.IsZero()
}

// IncludeEmpty is passed through to the compiler untouched.
func (r WordCountRequest) IncludeEmpty() bool {
	return r.includeEmpty
}

// WordCountResult pairs a count with the exact text it was computed from.
//
// Results are only built by the word count service, so Count always equals
// the counter's output for Content.
type WordCountResult struct {
	count   int
	content string
}

// NewWordCountResult is reserved for counter-backed producers. The count is
// stored as given.
func NewWordCountResult(count int, content string) WordCountResult {
	return WordCountResult{count: count, content: content}
}

// Count is the number of words found.
func (r WordCountResult) Count() int {
	return r.count
}

// Content is the text that was counted. It exists for diagnostics and tests.
func (r WordCountResult) Content() string {
	return r.content
}

// CompileRequest selects what the subtree compiler flattens.
type CompileRequest struct {
	NodeID       NodeID
	IncludeEmpty bool
}

// CompileResult is the flattened text of a subtree plus traversal stats.
type CompileResult struct {
	Content      string
	NodeCount    int
	TotalNodes   int
	SkippedEmpty int
}
