package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "tutor_"

const (
	TABLE_FLASHCARD   = TableName("flashcards")
	TABLE_NODE_VECTOR = TableName("node_vectors")
)
