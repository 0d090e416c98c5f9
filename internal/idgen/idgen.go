package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const transactionPrefix = "TRX-"

// Sequence hands out time ordered payment transaction ids.
type Sequence struct {
	node *snowflake.Node
}

func NewSequence(node int64) (*Sequence, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &Sequence{node: n}, nil
}

func (s *Sequence) TransactionID() string {
	return transactionPrefix + s.node.Generate().String()
}
