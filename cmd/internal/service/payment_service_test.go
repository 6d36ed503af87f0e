package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/entity"
	"drgroup/cmd/internal/infrastructure/aws/storage"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte)}
}

func (b *fakeBucket) UploadFile(_ context.Context, data []byte, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[key]; !ok {
		return &types.NoSuchKey{Message: aws.String("no such key")}
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?signed", nil
}

func (b *fakeBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, len(b.objects))
	for k := range b.objects {
		out = append(out, k)
	}
	return out
}

var _ storage.S3Client = (*fakeBucket)(nil)

type paymentFixture struct {
	commitments *fakeCommitmentRepo
	payments    *fakePaymentRepo
	bucket      *fakeBucket
	events      *recorder
	service     *DefaultPaymentService
}

func newPaymentFixture(withBucket bool) *paymentFixture {
	f := &paymentFixture{
		commitments: newFakeCommitmentRepo(),
		payments:    &fakePaymentRepo{},
		bucket:      newFakeBucket(),
		events:      &recorder{},
	}

	var bucket storage.S3Client
	if withBucket {
		bucket = f.bucket
	}
	f.service = NewPaymentService(f.payments, f.commitments, f.events, bucket, newValidator())
	return f
}

// receiptHeader builds the file header echo hands over for a multipart upload.
func receiptHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("receipt", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["receipt"], 1)
	return form.File["receipt"][0]
}

func paymentRequest(commitmentID string) *contract.PaymentRequest {
	return &contract.PaymentRequest{
		CommitmentID:  commitmentID,
		Amount:        decimal.NewFromInt(1_000_000),
		PaidAt:        "2025-01-08",
		PaymentMethod: "transfer",
		Reference:     " TRX-001 ",
	}
}

func TestCreatePayment_SettlesCommitment(t *testing.T) {
	f := newPaymentFixture(true)
	members := seedSeries(t, f.commitments, "g1", "Arriendo", "2025-01-01", 2)

	resp, apierr := f.service.CreatePayment(context.Background(), testActor, paymentRequest(members[0].ID), nil)
	require.Nil(t, apierr)
	require.NotNil(t, resp.CommitmentID)
	assert.Equal(t, members[0].ID, *resp.CommitmentID)
	assert.Equal(t, "Arriendo", resp.Concept, "concept is taken from the commitment")
	assert.Equal(t, "co-1", resp.CompanyID)
	assert.Equal(t, "TRX-001", resp.Reference)
	assert.False(t, resp.HasReceipt)

	assert.Equal(t, entity.StatusPaid, f.commitments.get(members[0].ID).Status)
	assert.Equal(t, entity.StatusPending, f.commitments.get(members[1].ID).Status)
}

func TestCreatePayment_WithReceipt(t *testing.T) {
	f := newPaymentFixture(true)

	req := paymentRequest("")
	req.Concept = "Papelería"
	resp, apierr := f.service.CreatePayment(context.Background(), testActor, req, receiptHeader(t, "Factura.PDF", []byte("%PDF-1.4")))
	require.Nil(t, apierr)
	assert.True(t, resp.HasReceipt)
	assert.Equal(t, 8, resp.ReceiptSize)

	keys := f.bucket.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], storage.PathReceipts))
	assert.True(t, strings.HasSuffix(keys[0], ".pdf"))

	url, apierr := f.service.GetReceiptURL(context.Background(), resp.ID)
	require.Nil(t, apierr)
	assert.Contains(t, url.URL, keys[0])
	assert.NotEmpty(t, url.ExpiresAt)
}

func TestCreatePayment_Rejects(t *testing.T) {
	f := newPaymentFixture(true)

	zero := paymentRequest("")
	zero.Concept = "Papelería"
	zero.Amount = decimal.Zero
	_, apierr := f.service.CreatePayment(context.Background(), testActor, zero, nil)
	assert.Equal(t, apierror.InvalidAmountError, apierr)

	_, apierr = f.service.CreatePayment(context.Background(), testActor, paymentRequest(""), nil)
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code(), "a loose payment needs a concept")

	_, apierr = f.service.CreatePayment(context.Background(), testActor, paymentRequest("missing"), nil)
	assert.Equal(t, apierror.NotFoundError, apierr)

	exe := paymentRequest("")
	exe.Concept = "Papelería"
	_, apierr = f.service.CreatePayment(context.Background(), testActor, exe, receiptHeader(t, "virus.exe", []byte("MZ")))
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
	assert.Empty(t, f.bucket.keys())
}

func TestCreatePayment_ReceiptsDisabled(t *testing.T) {
	f := newPaymentFixture(false)

	req := paymentRequest("")
	req.Concept = "Papelería"
	_, apierr := f.service.CreatePayment(context.Background(), testActor, req, receiptHeader(t, "factura.pdf", []byte("%PDF")))
	assert.Equal(t, apierror.ReceiptsDisabledError, apierr)

	resp, apierr := f.service.CreatePayment(context.Background(), testActor, req, nil)
	require.Nil(t, apierr)

	_, apierr = f.service.GetReceiptURL(context.Background(), resp.ID)
	assert.Equal(t, apierror.ReceiptsDisabledError, apierr)
}

func TestCreatePayment_DiscardsReceiptWhenStoreFails(t *testing.T) {
	f := newPaymentFixture(true)
	f.payments.failAll = true

	req := paymentRequest("")
	req.Concept = "Papelería"
	_, apierr := f.service.CreatePayment(context.Background(), testActor, req, receiptHeader(t, "factura.pdf", []byte("%PDF")))
	assert.Equal(t, apierror.InternalServerError, apierr)
	assert.Empty(t, f.bucket.keys())
}

func TestDeletePayment_RevertsCommitment(t *testing.T) {
	f := newPaymentFixture(true)
	members := seedSeries(t, f.commitments, "g1", "Arriendo", "2025-01-01", 1)
	id := members[0].ID

	first, apierr := f.service.CreatePayment(context.Background(), testActor, paymentRequest(id), receiptHeader(t, "a.pdf", []byte("a")))
	require.Nil(t, apierr)
	second, apierr := f.service.CreatePayment(context.Background(), testActor, paymentRequest(id), nil)
	require.Nil(t, apierr)

	require.Nil(t, f.service.DeletePayment(context.Background(), testActor, first.ID))
	assert.Empty(t, f.bucket.keys())
	assert.Equal(t, entity.StatusPaid, f.commitments.get(id).Status, "another payment still covers it")

	require.Nil(t, f.service.DeletePayment(context.Background(), testActor, second.ID))
	assert.Equal(t, entity.StatusPending, f.commitments.get(id).Status)

	assert.Equal(t, apierror.NotFoundError, f.service.DeletePayment(context.Background(), testActor, second.ID))
}

func TestDeletePayment_MissingReceiptObject(t *testing.T) {
	f := newPaymentFixture(true)

	req := paymentRequest("")
	req.Concept = "Papelería"
	resp, apierr := f.service.CreatePayment(context.Background(), testActor, req, receiptHeader(t, "a.png", []byte("png")))
	require.Nil(t, apierr)

	// The object vanished from the bucket on its own
	for _, key := range f.bucket.keys() {
		require.NoError(t, f.bucket.DeleteFile(context.Background(), key))
	}

	assert.Nil(t, f.service.DeletePayment(context.Background(), testActor, resp.ID))
	payments, apierr := f.service.GetAllPayments(context.Background(), "")
	require.Nil(t, apierr)
	assert.Empty(t, payments)
}

func TestGetReceiptURL_NoReceipt(t *testing.T) {
	f := newPaymentFixture(true)

	req := paymentRequest("")
	req.Concept = "Papelería"
	resp, apierr := f.service.CreatePayment(context.Background(), testActor, req, nil)
	require.Nil(t, apierr)

	_, apierr = f.service.GetReceiptURL(context.Background(), resp.ID)
	assert.Equal(t, apierror.NoReceiptError, apierr)
}
