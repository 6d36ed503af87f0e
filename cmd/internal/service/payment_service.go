package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/domain/recurring"
	"drgroup/cmd/internal/infrastructure/aws/storage"
	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const ReceiptURLTTL = 15 * time.Minute

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindAll(ctx context.Context, commitmentID string) ([]*entity.Payment, error)
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	Delete(ctx context.Context, id string) error
}

type DefaultPaymentService struct {
	PaymentRepo    PaymentRepository
	CommitmentRepo CommitmentRepository
	Events         EventBroadcaster
	S3             storage.S3Client
	Validate       *validator.Validate
}

// NewPaymentService builds the service. s3 may be nil, in which case
// receipts are rejected and payments are stored without them.
func NewPaymentService(
	paymentRepo PaymentRepository,
	commitmentRepo CommitmentRepository,
	events EventBroadcaster,
	s3 storage.S3Client,
	validate *validator.Validate,
) *DefaultPaymentService {
	return &DefaultPaymentService{
		PaymentRepo:    paymentRepo,
		CommitmentRepo: commitmentRepo,
		Events:         events,
		S3:             s3,
		Validate:       validate,
	}
}

// CreatePayment records a payment. When it settles a commitment, that
// commitment is marked paid. fileHeader is optional.
func (s *DefaultPaymentService) CreatePayment(ctx context.Context, actor *utils.Actor, req *contract.PaymentRequest, fileHeader *multipart.FileHeader) (*contract.PaymentResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.InvalidAmountError
	}

	paidAt, err := utils.ParseDate(req.PaidAt)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	payment := &entity.Payment{
		CompanyID:     req.CompanyID,
		Concept:       req.Concept,
		Amount:        req.Amount,
		PaidAt:        paidAt,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
		Reference:     req.Reference,
	}
	if actor != nil {
		payment.CreatedBy = actor.Label()
	}

	var commitment *entity.Commitment
	if req.CommitmentID != "" {
		commitment, err = s.CommitmentRepo.FindByID(ctx, req.CommitmentID)
		if err != nil {
			log.Errorf("failed to fetch commitment: %v", err)
			return nil, apierror.InternalServerError
		}

		if commitment == nil {
			return nil, apierror.NotFoundError
		}

		id := commitment.ID
		payment.CommitmentID = &id
		if payment.CompanyID == "" {
			payment.CompanyID = commitment.CompanyID
		}
		if payment.Concept == "" {
			payment.Concept = commitment.Concept
		}
	}

	if strings.TrimSpace(payment.Concept) == "" {
		return nil, apierror.NewMissingParamError("concept")
	}

	if fileHeader != nil {
		key, size, apierr := s.uploadReceipt(ctx, fileHeader)
		if apierr != nil {
			return nil, apierr
		}
		payment.ReceiptKey = key
		payment.ReceiptSize = size
	}

	if err = s.PaymentRepo.Create(ctx, payment); err != nil {
		log.Errorf("failed to create payment: %v", err)
		s.discardReceipt(payment.ReceiptKey)
		return nil, apierror.InternalServerError
	}

	if commitment != nil && commitment.Status != entity.StatusPaid {
		s.setCommitmentStatus(ctx, commitment, entity.StatusPaid, actor)
	}

	resp := toPaymentResponse(payment)
	go s.dispatch(&events.PaymentCreated{PaymentResponse: resp})
	return resp, nil
}

func (s *DefaultPaymentService) GetAllPayments(ctx context.Context, commitmentID string) ([]*contract.PaymentResponse, apierror.ErrorResponse) {
	payments, err := s.PaymentRepo.FindAll(ctx, commitmentID)
	if err != nil {
		log.Errorf("failed to fetch payments: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	return resp, nil
}

// GetReceiptURL returns a short lived download link for the receipt.
func (s *DefaultPaymentService) GetReceiptURL(ctx context.Context, id string) (*contract.ReceiptURLResponse, apierror.ErrorResponse) {
	if s.S3 == nil {
		return nil, apierror.ReceiptsDisabledError
	}

	payment, apierr := s.findPayment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	if !payment.HasReceipt() {
		return nil, apierror.NoReceiptError
	}

	url, err := s.S3.PresignGet(ctx, storage.PathReceipts+payment.ReceiptKey, ReceiptURLTTL)
	if err != nil {
		log.Errorf("failed to presign receipt of payment %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	return &contract.ReceiptURLResponse{
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(ReceiptURLTTL).Format(time.RFC3339),
	}, nil
}

// DeletePayment removes a payment and its receipt. A commitment left with no
// payments goes back to pending.
func (s *DefaultPaymentService) DeletePayment(ctx context.Context, actor *utils.Actor, id string) apierror.ErrorResponse {
	payment, apierr := s.findPayment(ctx, id)
	if apierr != nil {
		return apierr
	}

	if err := deleteReceiptObject(ctx, s.S3, payment); err != nil {
		log.Errorf("failed to delete receipt of payment %s: %v", id, err)
		return apierror.InternalServerError
	}

	if err := s.PaymentRepo.Delete(ctx, payment.ID); err != nil {
		log.Errorf("failed to delete payment: %v", err)
		return apierror.InternalServerError
	}

	if payment.CommitmentID != nil {
		s.revertIfUnpaid(ctx, *payment.CommitmentID, actor)
	}
	return nil
}

func (s *DefaultPaymentService) revertIfUnpaid(ctx context.Context, commitmentID string, actor *utils.Actor) {
	remaining, err := s.PaymentRepo.FindAll(ctx, commitmentID)
	if err != nil {
		log.Errorf("failed to fetch payments of commitment %s: %v", commitmentID, err)
		return
	}
	if len(remaining) > 0 {
		return
	}

	commitment, err := s.CommitmentRepo.FindByID(ctx, commitmentID)
	if err != nil {
		log.Errorf("failed to fetch commitment %s: %v", commitmentID, err)
		return
	}

	if commitment != nil && commitment.Status == entity.StatusPaid {
		s.setCommitmentStatus(ctx, commitment, entity.StatusPending, actor)
	}
}

func (s *DefaultPaymentService) setCommitmentStatus(ctx context.Context, c *entity.Commitment, status entity.Status, actor *utils.Actor) {
	c.Status = status
	if actor != nil {
		c.UpdatedBy = actor.Label()
	}

	if err := s.CommitmentRepo.Save(ctx, c); err != nil {
		log.Errorf("failed to mark commitment %s as %s: %v", c.ID, status, err)
		return
	}
	go s.dispatch(&events.CommitmentUpdated{CommitmentResponse: toCommitmentResponse(c, recurring.DateOf(time.Now()))})
}

func (s *DefaultPaymentService) findPayment(ctx context.Context, id string) (*entity.Payment, apierror.ErrorResponse) {
	payment, err := s.PaymentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch payment: %v", err)
		return nil, apierror.InternalServerError
	}

	if payment == nil {
		return nil, apierror.NotFoundError
	}
	return payment, nil
}

// uploadReceipt stores the file under a random name and returns that name.
func (s *DefaultPaymentService) uploadReceipt(ctx context.Context, fileHeader *multipart.FileHeader) (string, int, apierror.ErrorResponse) {
	if s.S3 == nil {
		return "", 0, apierror.ReceiptsDisabledError
	}

	if apierr := checkReceiptFile(fileHeader); apierr != nil {
		return "", 0, apierr
	}

	data, apierr := readReceiptFile(fileHeader)
	if apierr != nil {
		return "", 0, apierr
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	if err := s.S3.UploadFile(ctx, data, storage.PathReceipts+key); err != nil {
		log.Errorf("failed to upload receipt: %v", err)
		return "", 0, apierror.InternalServerError
	}
	return key, len(data), nil
}

// discardReceipt removes a receipt whose payment could not be stored.
func (s *DefaultPaymentService) discardReceipt(key string) {
	if key == "" || s.S3 == nil {
		return
	}

	if err := s.S3.DeleteFile(context.Background(), storage.PathReceipts+key); err != nil {
		log.Warnf("failed to discard orphaned receipt %s: %v", key, err)
	}
}

func (s *DefaultPaymentService) dispatch(evt events.SocketEvent) {
	if s.Events == nil {
		return
	}
	s.Events.Broadcast(context.Background(), evt)
}

func checkReceiptFile(fileHeader *multipart.FileHeader) apierror.ErrorResponse {
	if fileHeader.Size > contract.MaxReceiptFileSizeBytes {
		return apierror.NewFileTooLargeError(contract.MaxReceiptFileSizeBytes)
	}

	if strings.TrimSpace(fileHeader.Filename) == "" {
		return apierror.MissingFileNameError
	}

	if ext, ok := utils.CheckFileExt(fileHeader.Filename, contract.ValidReceiptFileTypes); !ok {
		return apierror.NewInvalidFileExtError(ext)
	}
	return nil
}

func readReceiptFile(fileHeader *multipart.FileHeader) ([]byte, apierror.ErrorResponse) {
	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("failed to open file: %v", err)
		return nil, apierror.InternalServerError
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("failed to read file: %v", err)
		return nil, apierror.InternalServerError
	}
	return data, nil
}

// deleteReceiptObject deletes the payment receipt from the bucket.
//
// It is idempotent: it returns nil if the object does not exist, so the
// database and the bucket can drift apart without blocking deletes.
func deleteReceiptObject(ctx context.Context, bucket storage.S3Client, payment *entity.Payment) error {
	if !payment.HasReceipt() || bucket == nil {
		return nil
	}

	err := bucket.DeleteFile(ctx, storage.PathReceipts+payment.ReceiptKey)

	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return nil
	}
	return err
}
