package imports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/cache"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
	"household-budget-backend/internal/services/audit"
	"household-budget-backend/internal/testutil"
)

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	ctx   context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repos := repository.New(testutil.NewDB(t), cache.New(time.Minute))
	ctx, _ := testutil.UserContext()
	return fixture{svc: NewService(repos, audit.NewRecorder(repos)), repos: repos, ctx: ctx}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestRegisterRejectsDuplicateContent(t *testing.T) {
	f := newFixture(t)
	content := []byte("date,merchant,amount\n2024-03-01,Market,-10\n")

	first, err := f.svc.Register(f.ctx, "march.csv", models.SourceOFX, content)
	require.NoError(t, err)
	assert.Equal(t, FileHash(content), first.FileHash)

	again, err := f.svc.Register(f.ctx, "march-copy.csv", models.SourceOFX, content)
	assert.ErrorIs(t, err, apperr.ErrDuplicateImport)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)

	other, _ := testutil.UserContext()
	_, err = f.svc.Register(other, "march.csv", models.SourceOFX, content)
	assert.NoError(t, err)

	_, err = f.svc.Register(f.ctx, "x.csv", models.ImportSource("pdf"), []byte("x"))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestIngestSkipsKnownExternalIDsAndResolvesMonth(t *testing.T) {
	f := newFixture(t)
	month, err := f.repos.Months.Create(f.ctx, 2024, 3)
	require.NoError(t, err)

	batch, err := f.svc.RegisterHash(f.ctx, "a.ofx", models.SourceOFX, "hash-a")
	require.NoError(t, err)
	res, err := f.svc.Ingest(f.ctx, batch, []Row{
		{ExternalID: "1", Merchant: "Market", Amount: decimal.NewFromInt(-50), TransactionDate: day(2)},
		{ExternalID: "2", Merchant: "Cinema", Amount: decimal.NewFromInt(-20), TransactionDate: day(3)},
		{ExternalID: "3", Merchant: "Old shop", Amount: decimal.NewFromInt(-5), TransactionDate: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, models.ImportCompleted, res.Batch.Status)
	assert.Equal(t, 3, res.Batch.TransactionCount)

	second, err := f.svc.RegisterHash(f.ctx, "b.ofx", models.SourceOFX, "hash-b")
	require.NoError(t, err)
	res, err = f.svc.Ingest(f.ctx, second, []Row{
		{ExternalID: "2", Merchant: "Cinema", Amount: decimal.NewFromInt(-20), TransactionDate: day(3)},
		{ExternalID: "4", Merchant: "Bakery", Amount: decimal.NewFromInt(-4), TransactionDate: day(4)},
		{ExternalID: "4", Merchant: "Bakery", Amount: decimal.NewFromInt(-4), TransactionDate: day(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 3, res.Batch.ProcessedCount)

	inMonth, err := f.repos.Transactions.List(f.ctx, repository.TransactionQuery{BudgetMonthID: &month.ID})
	require.NoError(t, err)
	assert.Len(t, inMonth, 3)
	for _, tx := range inMonth {
		assert.True(t, tx.NeedsReview)
		assert.Equal(t, models.ConfidenceLow, tx.Confidence)
		assert.Equal(t, models.SourceOFX, tx.Source)
		require.NotNil(t, tx.ImportBatchID)
	}

	pending := true
	all, err := f.repos.Transactions.List(f.ctx, repository.TransactionQuery{NeedsReview: &pending})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestIngestUsesSuppliedAndSuggestedCategories(t *testing.T) {
	f := newFixture(t)
	transport := &models.Category{Name: "Transport"}
	require.NoError(t, f.repos.Categories.Create(f.ctx, transport))
	require.NoError(t, f.repos.Transactions.Create(f.ctx, &models.Transaction{
		Merchant: "UBER TRIP", Amount: decimal.NewFromInt(-18), TransactionDate: day(1), CategoryID: &transport.ID,
	}))

	batch, err := f.svc.RegisterHash(f.ctx, "print.png", models.SourcePrint, "hash-print")
	require.NoError(t, err)
	res, err := f.svc.Ingest(f.ctx, batch, []Row{
		{Merchant: "Uber *Trip", Amount: decimal.NewFromInt(-22), TransactionDate: day(5)},
		{Merchant: "Hardware store", Amount: decimal.NewFromInt(-80), TransactionDate: day(6), CategoryID: &transport.ID, Confidence: models.ConfidenceMedium},
		{Merchant: "Own card payment", Amount: decimal.NewFromInt(-900), TransactionDate: day(7), IsInternal: true},
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Inserted)

	got, err := f.repos.Transactions.List(f.ctx, repository.TransactionQuery{ImportBatchID: &batch.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	byMerchant := map[string]models.Transaction{}
	for _, tx := range got {
		byMerchant[tx.Merchant] = tx
	}

	uber := byMerchant["Uber *Trip"]
	require.NotNil(t, uber.CategoryID)
	assert.Equal(t, transport.ID, *uber.CategoryID)
	assert.Equal(t, models.ConfidenceHigh, uber.Confidence)
	assert.False(t, uber.NeedsReview)

	hw := byMerchant["Hardware store"]
	assert.Equal(t, models.ConfidenceMedium, hw.Confidence)
	assert.False(t, hw.NeedsReview)

	own := byMerchant["Own card payment"]
	assert.True(t, own.IsInternal)
	assert.Nil(t, own.CategoryID)
	assert.False(t, own.NeedsReview)
}

func TestIngestInvalidRowFailsBatchAndAllowsRetry(t *testing.T) {
	f := newFixture(t)
	batch, err := f.svc.RegisterHash(f.ctx, "bad.csv", models.SourceManual, "hash-bad")
	require.NoError(t, err)

	_, err = f.svc.Ingest(f.ctx, batch, []Row{{Merchant: "", Amount: decimal.NewFromInt(-1), TransactionDate: day(1)}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	failed, err := f.svc.GetBatch(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)

	retry, err := f.svc.RegisterHash(f.ctx, "bad.csv", models.SourceManual, "hash-bad")
	require.NoError(t, err)
	assert.Equal(t, batch.ID, retry.ID)
	assert.Equal(t, models.ImportProcessing, retry.Status)
	assert.Nil(t, retry.ErrorMessage)
}

func TestRetryAfterPartialFailureDoesNotDuplicateRows(t *testing.T) {
	f := newFixture(t)
	rows := []Row{
		{Merchant: "A", Amount: decimal.NewFromInt(-1), TransactionDate: day(1)},
		{Merchant: "B", Amount: decimal.NewFromInt(-2), TransactionDate: day(2)},
	}

	batch, err := f.svc.RegisterHash(f.ctx, "march.csv", models.SourceManual, "hash-partial")
	require.NoError(t, err)
	// first chunk stored, then the run died
	require.NoError(t, f.repos.Transactions.CreateMany(f.ctx, []*models.Transaction{{
		Merchant: "A", Amount: decimal.NewFromInt(-1), TransactionDate: day(1), NeedsReview: true, ImportBatchID: &batch.ID,
	}}))
	require.NoError(t, f.repos.Imports.MarkBatchFailed(f.ctx, batch.ID, "connection reset", time.Now()))

	retry, err := f.svc.RegisterHash(f.ctx, "march.csv", models.SourceManual, "hash-partial")
	require.NoError(t, err)
	require.Equal(t, batch.ID, retry.ID)
	res, err := f.svc.Ingest(f.ctx, retry, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Batch.TransactionCount)

	stored, err := f.repos.Transactions.List(f.ctx, repository.TransactionQuery{ImportBatchID: &batch.ID})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, []string{stored[0].Merchant, stored[1].Merchant})
}

func TestIngestRejectsAnotherUsersCategory(t *testing.T) {
	f := newFixture(t)
	other, _ := testutil.UserContext()
	foreign := &models.Category{Name: "Theirs"}
	require.NoError(t, f.repos.Categories.Create(other, foreign))

	batch, err := f.svc.RegisterHash(f.ctx, "x.ofx", models.SourceOFX, "hash-foreign")
	require.NoError(t, err)
	res, err := f.svc.Ingest(f.ctx, batch, []Row{
		{Merchant: "Market", Amount: decimal.NewFromInt(-5), TransactionDate: day(3), CategoryID: &foreign.ID},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Nil(t, res)

	failed, err := f.svc.GetBatch(f.ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportFailed, failed.Status)

	stored, err := f.repos.Transactions.List(f.ctx, repository.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestParseCSV(t *testing.T) {
	in := strings.Join([]string{
		"date,merchant,amount,external_id",
		"2024-03-01,Market,-10.50,abc",
		"05-03-2024, Pharmacy ,-7",
		"not-a-date,Broken,-1",
		"2024-03-02,Missing amount,",
		"",
		"2024-03-03,Refund,12.00",
	}, "\n")

	rows, skipped, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, rows, 3)

	assert.Equal(t, "abc", rows[0].ExternalID)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("-10.50")))
	assert.Equal(t, "Pharmacy", rows[1].Merchant)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), rows[1].TransactionDate)
	assert.Empty(t, rows[1].ExternalID)
	assert.True(t, rows[2].Amount.IsPositive())

	_, _, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestParseCSVSemicolon(t *testing.T) {
	rows, skipped, err := ParseCSV(strings.NewReader("date;merchant;amount\n2024-03-01;Market;-3\n"))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "Market", rows[0].Merchant)
}

func TestImportCSV(t *testing.T) {
	f := newFixture(t)
	content := []byte("date,merchant,amount,external_id\n2024-03-01,Market,-10,m1\n2024-03-02,Bakery,-3,m2\nbad,row,x\n")

	batch, err := f.svc.Register(f.ctx, "upload.csv", models.SourceManual, content)
	require.NoError(t, err)
	res, err := f.svc.ImportCSV(f.ctx, batch, content)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, models.ImportCompleted, res.Batch.Status)

	_, err = f.svc.GetBatch(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
