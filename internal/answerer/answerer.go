// Package answerer produces chat replies from retrieved context.
package answerer

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Answerer generates a reply to query given retrieved context blocks and the
// user's prior conversation turns in chronological order.
type Answerer interface {
	Answer(ctx context.Context, query string, contextBlocks []string, history []models.Message) (string, error)
}
