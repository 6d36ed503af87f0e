package recurring

import (
	"context"
	"errors"
	"fmt"

	"drgroup/cmd/internal/domain/entity"
)

// Store is the slice of the document store the series engine writes to.
// Create must return the id it assigned to the new record.
type Store interface {
	Create(ctx context.Context, commitment *entity.Commitment) (string, error)
}

// Outcome tells apart the three ways a persist call can end.
type Outcome string

const (
	// OutcomePersisted means every record was written and has an id.
	OutcomePersisted Outcome = "persisted"

	// OutcomePartial means writes started but did not all succeed. IDs holds
	// what was written; those records stay in the store.
	OutcomePartial Outcome = "partial"

	// OutcomeRejected means validation failed and nothing was written.
	OutcomeRejected Outcome = "rejected"
)

type PersistResult struct {
	Outcome  Outcome
	GroupID  entity.SeriesID
	IDs      []string
	Intended int

	// Records are the written copies, with ids, group and parent filled in.
	Records []*entity.Commitment
}

func (r *PersistResult) Count() int {
	return len(r.IDs)
}

// Persist writes a generated series as one recurring group. The first record
// becomes the group origin and every other record points at it. Writes are
// sequential and not transactional: on failure the result lists what was
// written and the error is a *PersistError.
func (e *Engine) Persist(ctx context.Context, seq []*entity.Commitment) (*PersistResult, error) {
	if err := checkSequence(seq); err != nil {
		return &PersistResult{Outcome: OutcomeRejected, Intended: len(seq)}, err
	}

	group := e.newSeries()
	return e.write(ctx, group, seq, func(_ int, firstID string) *string {
		if firstID == "" {
			return nil
		}
		return &firstID
	})
}

// PersistFollowing writes instances that continue an already stored origin
// record: all of them join the origin's group and reference it as parent.
func (e *Engine) PersistFollowing(ctx context.Context, origin *entity.Commitment, seq []*entity.Commitment) (*PersistResult, error) {
	if origin == nil || origin.ID == "" || origin.RecurringGroup.IsZero() {
		return &PersistResult{Outcome: OutcomeRejected, Intended: len(seq)},
			fmt.Errorf("%w: origin must be a stored record with a recurring group", ErrInvalidInput)
	}
	if err := checkSequence(seq); err != nil {
		return &PersistResult{Outcome: OutcomeRejected, GroupID: origin.RecurringGroup, Intended: len(seq)}, err
	}

	parentID := origin.ID
	return e.write(ctx, origin.RecurringGroup, seq, func(int, string) *string {
		id := parentID
		return &id
	})
}

// write performs the sequential creates. parentFor receives the index being
// written and the id of record 0 (empty while record 0 itself is written).
func (e *Engine) write(
	ctx context.Context,
	group entity.SeriesID,
	seq []*entity.Commitment,
	parentFor func(index int, firstID string) *string,
) (*PersistResult, error) {
	if e.store == nil {
		return &PersistResult{Outcome: OutcomeRejected, GroupID: group, Intended: len(seq)},
			errors.New("series engine has no store")
	}

	// Once writes begin there is no cancellation path.
	ctx = context.WithoutCancel(ctx)

	res := &PersistResult{
		Outcome:  OutcomePartial,
		GroupID:  group,
		Intended: len(seq),
		IDs:      make([]string, 0, len(seq)),
		Records:  make([]*entity.Commitment, 0, len(seq)),
	}

	var firstID string
	for i, c := range seq {
		rec := c.Clone()
		rec.ID = ""
		rec.RecurringGroup = group
		rec.ParentCommitmentID = parentFor(i, firstID)

		id, err := e.store.Create(ctx, rec)
		if err != nil {
			return res, &PersistError{GroupID: group, Written: len(res.IDs), Intended: len(seq), Err: err}
		}
		if id == "" {
			return res, &PersistError{
				GroupID:  group,
				Written:  len(res.IDs),
				Intended: len(seq),
				Err:      fmt.Errorf("%w: store returned no id for record %d", ErrPersistenceIntegrity, i),
			}
		}

		if i == 0 {
			firstID = id
		}
		rec.ID = id
		res.IDs = append(res.IDs, id)
		res.Records = append(res.Records, rec)
	}

	res.Outcome = OutcomePersisted
	return res, nil
}

// checkSequence rejects the whole batch before any write happens.
func checkSequence(seq []*entity.Commitment) error {
	if len(seq) == 0 {
		return fmt.Errorf("%w: nothing to persist", ErrInvalidInput)
	}
	for i, c := range seq {
		if c == nil || !c.HasCompanyName() {
			return fmt.Errorf("%w: record %d has no company name", ErrOrphanRisk, i)
		}
	}
	return nil
}
