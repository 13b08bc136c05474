package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/domain"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

type stubRefreshService struct {
	refreshed chan string
}

func newStubRefreshService() *stubRefreshService {
	return &stubRefreshService{refreshed: make(chan string, 4)}
}

func (s *stubRefreshService) RefreshPackage(_ context.Context, trackingNumber string) (*domain.TrackedPackage, error) {
	s.refreshed <- trackingNumber
	return nil, domain.ErrNoTrackingData
}

func (s *stubRefreshService) RunScheduledRefresh(context.Context) {}

func newPackageService(repo *stubPackageRepo, events *stubEventRepo, refresh ports.RefreshService) *PackageService {
	return NewPackageService(repo, events, refresh, zerolog.Nop())
}

func TestCreatePackage_StartsProvisionalAndRefreshes(t *testing.T) {
	repo := newStubPackageRepo()
	refresh := newStubRefreshService()
	svc := newPackageService(repo, newStubEventRepo(), refresh)

	pkg, err := svc.CreatePackage(context.Background(), ports.CreatePackageInput{
		TrackingNumber: "AWB123",
		Description:    "new headphones",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pkg.CurrentStatus != domain.StatusTrackingInProgress {
		t.Errorf("status = %q, want %q", pkg.CurrentStatus, domain.StatusTrackingInProgress)
	}
	if pkg.CourierService != "" {
		t.Errorf("courier must be unknown at creation, got %q", pkg.CourierService)
	}

	select {
	case number := <-refresh.refreshed:
		if number != "AWB123" {
			t.Errorf("refreshed %q, want AWB123", number)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("detached refresh never ran")
	}
}

func TestCreatePackage_RejectsDuplicates(t *testing.T) {
	repo := newStubPackageRepo()
	svc := newPackageService(repo, newStubEventRepo(), newStubRefreshService())

	if _, err := svc.CreatePackage(context.Background(), ports.CreatePackageInput{TrackingNumber: "AWB123"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreatePackage(context.Background(), ports.CreatePackageInput{TrackingNumber: "AWB123"})
	if !errors.Is(err, domain.ErrDuplicatePackage) {
		t.Fatalf("expected ErrDuplicatePackage, got: %v", err)
	}
}

func TestGetPackage_ReturnsHistory(t *testing.T) {
	repo := newStubPackageRepo()
	events := newStubEventRepo()
	pkg := seedPackage(repo, "AWB123", "courierB")
	_ = events.Insert(context.Background(), &domain.PersistedTrackingEvent{
		PackageID: pkg.ID, Details: "In Transit", OccurredAt: ts("2024-12-05 11:00:00"),
	})

	svc := newPackageService(repo, events, newStubRefreshService())
	got, history, err := svc.GetPackage(context.Background(), "AWB123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TrackingNumber != "AWB123" {
		t.Errorf("tracking number = %q", got.TrackingNumber)
	}
	if len(history) != 1 {
		t.Errorf("expected 1 history row, got %d", len(history))
	}
}

func TestGetPackage_UnknownNumber(t *testing.T) {
	svc := newPackageService(newStubPackageRepo(), newStubEventRepo(), newStubRefreshService())
	_, _, err := svc.GetPackage(context.Background(), "NOPE")
	if !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got: %v", err)
	}
}

func TestListPackages_ClampsPaging(t *testing.T) {
	repo := newStubPackageRepo()
	for _, n := range []string{"A1", "A2", "A3"} {
		seedPackage(repo, n, "")
	}
	svc := newPackageService(repo, newStubEventRepo(), newStubRefreshService())

	got, err := svc.ListPackages(context.Background(), -5, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("negative offset and zero limit must fall back to defaults, got %d rows", len(got))
	}

	got, err = svc.ListPackages(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit 2 returned %d rows", len(got))
	}
}

func TestDeletePackage(t *testing.T) {
	repo := newStubPackageRepo()
	seedPackage(repo, "AWB123", "")
	svc := newPackageService(repo, newStubEventRepo(), newStubRefreshService())

	if err := svc.DeletePackage(context.Background(), "AWB123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeletePackage(context.Background(), "AWB123"); !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound on second delete, got: %v", err)
	}
}
