package cfg

// BlockType classifies a block in the summary view.
type BlockType string

const (
	BlockTypeEntry    BlockType = "entry"     // Function entry point
	BlockTypeBranch   BlockType = "branch"    // Ends in a branch test
	BlockTypeLoopBody BlockType = "loop_body" // Inside a loop body
	BlockTypeReturn   BlockType = "return"    // Ends in a return statement
	BlockTypeExit     BlockType = "exit"      // Falls off the end of the function
	BlockTypePlain    BlockType = "plain"     // Straight-line code
)

// EdgeType classifies an edge in the summary view.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional" // Sequential flow or jump
	EdgeTypeTrue          EdgeType = "true"          // Taken when the test holds
	EdgeTypeFalse         EdgeType = "false"         // Taken when the test fails
	EdgeTypeCase          EdgeType = "case"          // Switch case match
	EdgeTypeBackEdge      EdgeType = "back_edge"     // Returns to a block on the current path
)

// BlockInfo is the serializable summary of one basic block.
type BlockInfo struct {
	ID           string    `json:"id" msgpack:"id"`
	Type         BlockType `json:"type" msgpack:"type"`
	Flags        string    `json:"flags,omitempty" msgpack:"flags,omitempty"`
	StartLine    int       `json:"start_line" msgpack:"start_line"`
	EndLine      int       `json:"end_line" msgpack:"end_line"`
	Statements   []string  `json:"statements" msgpack:"statements"`
	Predecessors []string  `json:"predecessors" msgpack:"predecessors"`
}

// EdgeInfo is the serializable summary of one control edge.
type EdgeInfo struct {
	SourceID  string   `json:"source_id" msgpack:"source_id"`
	TargetID  string   `json:"target_id" msgpack:"target_id"`
	EdgeType  EdgeType `json:"edge_type" msgpack:"edge_type"`
	Condition string   `json:"condition,omitempty" msgpack:"condition,omitempty"`
}

// Info summarizes the graph of one function: the blocks reachable from its
// entry, their edges, and the cyclomatic complexity E - N + 2 of that graph
// with all exit blocks joined into one.
type Info struct {
	FunctionName         string      `json:"function_name" msgpack:"function_name"`
	StartLine            int         `json:"start_line" msgpack:"start_line"`
	Blocks               []BlockInfo `json:"blocks" msgpack:"blocks"`
	Edges                []EdgeInfo  `json:"edges" msgpack:"edges"`
	EntryBlockID         string      `json:"entry_block_id" msgpack:"entry_block_id"`
	ExitBlockIDs         []string    `json:"exit_block_ids" msgpack:"exit_block_ids"`
	CyclomaticComplexity int         `json:"cyclomatic_complexity" msgpack:"cyclomatic_complexity"`
}
