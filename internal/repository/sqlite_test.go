package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/common"
	"github.com/huynhduongtien171003/amis-demo/internal/entity"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	total := decimal.NewFromInt(50000000)
	job := &Job{
		ID:        "job-1",
		Kind:      constants.KindOrder,
		InputType: constants.InputTypeText,
		Status:    constants.JobStatusCompleted,
		Order: &entity.Order{
			CustomerName: "Nguyễn Văn A",
			TotalAmount:  &total,
			Items:        []entity.OrderItem{},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Put(ctx, job); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Order == nil || got.Order.CustomerName != "Nguyễn Văn A" {
		t.Fatalf("Order = %+v", got.Order)
	}
	if got.Order.TotalAmount == nil || !got.Order.TotalAmount.Equal(total) {
		t.Fatalf("TotalAmount = %v", got.Order.TotalAmount)
	}
}

func TestSQLiteStore_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	job := &Job{
		ID:        "job-1",
		Kind:      constants.KindInvoice,
		InputType: constants.InputTypeFile,
		Status:    constants.JobStatusProcessing,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Put(ctx, job); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	job.Status = constants.JobStatusCompleted
	job.Invoice = &entity.Invoice{SellerLegalName: "Công ty A"}
	if err := s.Put(ctx, job); err != nil {
		t.Fatalf("second Put error: %v", err)
	}

	got, err := s.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Status != constants.JobStatusCompleted || got.Invoice == nil {
		t.Fatalf("job = %+v", got)
	}

	jobs, err := s.List(ctx, constants.KindInvoice, 10)
	if err != nil || len(jobs) != 1 {
		t.Fatalf("List = %v, %v", jobs, err)
	}

	if err := s.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, "job-1"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
