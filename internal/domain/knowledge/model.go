package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// Passage maps to the knowledge_passages table.
type Passage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Source    string    `db:"source" json:"source"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Hit is a passage matched by a full-text search.
type Hit struct {
	Passage
	Rank float64 `json:"rank"`
}

// IngestRequest carries a document to split into passages.
type IngestRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// minPassageLen drops headings and stray lines during ingest.
const minPassageLen = 40
