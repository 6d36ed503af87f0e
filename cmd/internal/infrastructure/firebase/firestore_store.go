package firebase

import (
	"context"
	"errors"
	"slices"
	"strings"

	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/utils"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore ids are assigned by the store on Add, which is what the series
// engine expects from Create.

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

type CommitmentStore struct {
	col *firestore.CollectionRef
}

func NewCommitmentStore(client *firestore.Client) *CommitmentStore {
	return &CommitmentStore{col: client.Collection(CollectionCommitments)}
}

func (s *CommitmentStore) Create(ctx context.Context, commitment *entity.Commitment) (string, error) {
	now := utils.NowUTC()
	if commitment.CreatedAt == 0 {
		commitment.CreatedAt = now
	}
	commitment.UpdatedAt = now

	ref, _, err := s.col.Add(ctx, toCommitmentDoc(commitment))
	if err != nil {
		return "", err
	}
	commitment.ID = ref.ID
	return ref.ID, nil
}

func (s *CommitmentStore) FindAll(ctx context.Context, filter *entity.CommitmentFilter) ([]*entity.Commitment, error) {
	query := s.col.Query
	if filter != nil {
		if filter.CompanyID != "" {
			query = query.Where("companyId", "==", filter.CompanyID)
		}
		if !filter.Group.IsZero() {
			query = query.Where("recurringGroup", "==", filter.Group.String())
		}
		if filter.Year > 0 {
			query = query.Where("year", "==", filter.Year)
		}
		if filter.Month > 0 {
			query = query.Where("month", "==", filter.Month)
		}
		if filter.RecurringOnly {
			query = query.Where("isRecurring", "==", true)
		}
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	commitments := make([]*entity.Commitment, 0, len(snaps))
	for _, snap := range snaps {
		var doc commitmentDoc
		if err = snap.DataTo(&doc); err != nil {
			return nil, err
		}
		c := doc.toEntity(snap.Ref.ID)
		if filter != nil && filter.RecurringOnly && c.RecurringGroup.IsZero() {
			continue
		}
		commitments = append(commitments, c)
	}

	// Sorted here, ordering on top of equality filters needs composite indexes.
	slices.SortStableFunc(commitments, func(a, b *entity.Commitment) int {
		if cmp := a.DueDate.Compare(b.DueDate); cmp != 0 {
			return cmp
		}
		return a.InstanceNumber - b.InstanceNumber
	})
	return commitments, nil
}

func (s *CommitmentStore) FindByID(ctx context.Context, id string) (*entity.Commitment, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var doc commitmentDoc
	if err = snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toEntity(snap.Ref.ID), nil
}

func (s *CommitmentStore) FindByGroup(ctx context.Context, group entity.SeriesID) ([]*entity.Commitment, error) {
	return s.FindAll(ctx, &entity.CommitmentFilter{Group: group})
}

func (s *CommitmentStore) FindRecurring(ctx context.Context) ([]*entity.Commitment, error) {
	return s.FindAll(ctx, &entity.CommitmentFilter{RecurringOnly: true})
}

func (s *CommitmentStore) Save(ctx context.Context, commitment *entity.Commitment) error {
	if commitment.ID == "" {
		return errors.New("cannot save a commitment without id")
	}
	commitment.UpdatedAt = utils.NowUTC()

	_, err := s.col.Doc(commitment.ID).Set(ctx, toCommitmentDoc(commitment))
	return err
}

func (s *CommitmentStore) Delete(ctx context.Context, id string) error {
	_, err := s.col.Doc(id).Delete(ctx)
	return err
}

// DeleteByIDs deletes one document at a time and stops at the first failure,
// reporting how many were removed before it.
func (s *CommitmentStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, err := s.col.Doc(id).Delete(ctx); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

type CompanyStore struct {
	col *firestore.CollectionRef
}

func NewCompanyStore(client *firestore.Client) *CompanyStore {
	return &CompanyStore{col: client.Collection(CollectionCompanies)}
}

func (s *CompanyStore) Create(ctx context.Context, company *entity.Company) error {
	now := utils.NowUTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	ref, _, err := s.col.Add(ctx, toCompanyDoc(company))
	if err != nil {
		return err
	}
	company.ID = ref.ID
	return nil
}

func (s *CompanyStore) FindAll(ctx context.Context) ([]*entity.Company, error) {
	snaps, err := s.col.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	companies := make([]*entity.Company, 0, len(snaps))
	for _, snap := range snaps {
		var doc companyDoc
		if err = snap.DataTo(&doc); err != nil {
			return nil, err
		}
		companies = append(companies, doc.toEntity(snap.Ref.ID))
	}

	slices.SortFunc(companies, func(a, b *entity.Company) int {
		return strings.Compare(a.Name, b.Name)
	})
	return companies, nil
}

func (s *CompanyStore) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var doc companyDoc
	if err = snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toEntity(snap.Ref.ID), nil
}

func (s *CompanyStore) FindByNIT(ctx context.Context, nit string) (*entity.Company, error) {
	snaps, err := s.col.Where("nit", "==", nit).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	var doc companyDoc
	if err = snaps[0].DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toEntity(snaps[0].Ref.ID), nil
}

func (s *CompanyStore) Save(ctx context.Context, company *entity.Company) error {
	company.UpdatedAt = utils.NowUTC()
	_, err := s.col.Doc(company.ID).Set(ctx, toCompanyDoc(company))
	return err
}

type PaymentStore struct {
	col *firestore.CollectionRef
}

func NewPaymentStore(client *firestore.Client) *PaymentStore {
	return &PaymentStore{col: client.Collection(CollectionPayments)}
}

func (s *PaymentStore) Create(ctx context.Context, payment *entity.Payment) error {
	payment.CreatedAt = utils.NowUTC()

	ref, _, err := s.col.Add(ctx, toPaymentDoc(payment))
	if err != nil {
		return err
	}
	payment.ID = ref.ID
	return nil
}

func (s *PaymentStore) FindAll(ctx context.Context, commitmentID string) ([]*entity.Payment, error) {
	query := s.col.Query
	if commitmentID != "" {
		query = query.Where("commitmentId", "==", commitmentID)
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	payments := make([]*entity.Payment, 0, len(snaps))
	for _, snap := range snaps {
		var doc paymentDoc
		if err = snap.DataTo(&doc); err != nil {
			return nil, err
		}
		payments = append(payments, doc.toEntity(snap.Ref.ID))
	}

	slices.SortStableFunc(payments, func(a, b *entity.Payment) int {
		return b.PaidAt.Compare(a.PaidAt)
	})
	return payments, nil
}

func (s *PaymentStore) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	snap, err := s.col.Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var doc paymentDoc
	if err = snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toEntity(snap.Ref.ID), nil
}

func (s *PaymentStore) Delete(ctx context.Context, id string) error {
	_, err := s.col.Doc(id).Delete(ctx)
	return err
}
