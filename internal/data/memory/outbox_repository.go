package memory

import (
	"context"

	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
)

// OutboxRepository implements outbox.Repository over the in-memory state
type OutboxRepository struct {
	view view
}

func (r *OutboxRepository) Create(ctx context.Context, msg *outbox.Message) error {
	return r.view.write(func(st *state) error {
		for _, existing := range st.outbox {
			if existing.TransactionID == msg.TransactionID {
				return outbox.ErrDuplicateMessage{TransactionID: msg.TransactionID}
			}
		}
		msg.ID = st.nextOutboxID
		st.nextOutboxID++
		stored := *msg
		st.outbox = append(st.outbox, &stored)
		return nil
	})
}

// GetPending returns pending messages oldest first; insertion order is creation order
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	var pending []*outbox.Message
	err := r.view.read(func(st *state) error {
		for _, msg := range st.outbox {
			if len(pending) >= limit {
				break
			}
			if msg.Status == shared.OutboxStatusPending {
				cp := *msg
				pending = append(pending, &cp)
			}
		}
		return nil
	})
	return pending, err
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return r.replace(id, func(msg *outbox.Message) error {
		return msg.SetStatus(status)
	})
}

func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	return r.replace(id, func(msg *outbox.Message) error {
		msg.IncrementAttempts()
		return nil
	})
}

func (r *OutboxRepository) replace(id int64, update func(msg *outbox.Message) error) error {
	return r.view.write(func(st *state) error {
		for i, msg := range st.outbox {
			if msg.ID == id {
				cp := *msg
				if err := update(&cp); err != nil {
					return err
				}
				st.outbox[i] = &cp
				return nil
			}
		}
		return outbox.ErrMessageNotFound{ID: id}
	})
}
