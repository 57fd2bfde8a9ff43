/*
queue.go - Pending transfer queue

PURPOSE:
  Holds the ordered list of transfer requests a user has queued but not
  yet projected. This is UI state made explicit: the queue itself does
  no validation (a queued transfer may become invalid as earlier ones
  are reordered or removed) - validity is only decided when the batch is
  projected.

Not safe for concurrent use; callers are responsible for sequencing.
*/
package budget

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/grantdesk/rebudget/engine"
)

// Queue is an ordered list of pending transfer requests.
type Queue struct {
	items []engine.TransferRequest
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a request, assigning it a fresh id, and returns it.
func (q *Queue) Enqueue(from, to engine.AccountID, amountCents int64, mode engine.TransferMode) engine.TransferRequest {
	req := engine.TransferRequest{
		ID:          uuid.NewString(),
		From:        from,
		To:          to,
		AmountCents: amountCents,
		Mode:        mode,
	}
	q.items = append(q.items, req)
	return req
}

// Remove drops the request with the given id, preserving order of the
// rest. Returns false if no such request is queued.
func (q *Queue) Remove(id string) bool {
	for i, req := range q.items {
		if req.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.items = nil
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	return len(q.items)
}

// Items returns a copy of the queued requests in submission order.
func (q *Queue) Items() []engine.TransferRequest {
	out := make([]engine.TransferRequest, len(q.items))
	copy(out, q.items)
	return out
}

// =============================================================================
// BATCH FILES
// =============================================================================

type transferRowJSON struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Amount flexCents `json:"amount"`
	Mode   string    `json:"mode"`
}

// ParseTransfersJSON reads an ordered transfer batch from JSON, for
// offline projections. Rows without an id get one assigned.
func ParseTransfersJSON(r io.Reader) ([]engine.TransferRequest, error) {
	var rows []transferRowJSON
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding transfer batch: %w", err)
	}

	out := make([]engine.TransferRequest, len(rows))
	for i, row := range rows {
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}
		out[i] = engine.TransferRequest{
			ID:          id,
			From:        engine.AccountID(row.From),
			To:          engine.AccountID(row.To),
			AmountCents: int64(row.Amount),
			Mode:        engine.TransferMode(row.Mode),
		}
	}
	return out, nil
}
