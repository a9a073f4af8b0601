package worker

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
)

func TestRegistryUnknownJobNotFound(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("never-submitted"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRegistryCreateStartsPending(t *testing.T) {
	r := NewRegistry()
	if err := r.Create("job-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	snap, err := r.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Status != model.JobStatusPending {
		t.Fatalf("want pending, got %s", snap.Status)
	}
	if snap.Progress != "queued" {
		t.Fatalf("want progress %q, got %q", "queued", snap.Progress)
	}
}

func TestRegistryDuplicateCreateRejectedWithoutMutation(t *testing.T) {
	r := NewRegistry()
	if err := r.Create("job-1"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := r.SetStatus("job-1", model.JobStatusProcessing, "working"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	if err := r.Create("job-1"); !errors.Is(err, domain.ErrDuplicateJob) {
		t.Fatalf("want ErrDuplicateJob, got %v", err)
	}
	snap, _ := r.Get("job-1")
	if snap.Status != model.JobStatusProcessing || snap.Progress != "working" {
		t.Fatalf("existing job mutated by duplicate create: %+v", snap)
	}
}

func TestRegistryTerminalStatesAreMonotonic(t *testing.T) {
	r := NewRegistry()
	_ = r.Create("job-1")
	_ = r.SetStatus("job-1", model.JobStatusProcessing, "working")

	if _, err := r.Finalize("job-1", "artifact", nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if _, err := r.Finalize("job-1", "", errors.New("late failure")); !errors.Is(err, domain.ErrJobFinalized) {
		t.Fatalf("second finalize must fail loudly, got %v", err)
	}
	if err := r.SetProgress("job-1", "zombie update"); !errors.Is(err, domain.ErrJobFinalized) {
		t.Fatalf("progress after finalize must fail, got %v", err)
	}
	if err := r.SetStatus("job-1", model.JobStatusProcessing, "again"); !errors.Is(err, domain.ErrJobFinalized) {
		t.Fatalf("status after finalize must fail, got %v", err)
	}

	snap, _ := r.Get("job-1")
	if snap.Status != model.JobStatusCompleted || snap.Result != "artifact" {
		t.Fatalf("terminal snapshot changed: %+v", snap)
	}
}

func TestRegistryFailedJobKeepsErrorAndNoResult(t *testing.T) {
	r := NewRegistry()
	_ = r.Create("job-1")
	_ = r.SetStatus("job-1", model.JobStatusProcessing, "working")

	if _, err := r.Finalize("job-1", "ignored", errors.New("transcription failed: bad audio")); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	snap, _ := r.Get("job-1")
	if snap.Status != model.JobStatusFailed {
		t.Fatalf("want failed, got %s", snap.Status)
	}
	if snap.Error == "" {
		t.Fatal("error field must be set on failed jobs")
	}
	if snap.Result != "" {
		t.Fatal("result and error are mutually exclusive")
	}
}

func TestRegistryConcurrentCreateOneWinner(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Create("contended")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, domain.ErrDuplicateJob) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("want exactly one winning create, got %d", winners)
	}
}

func TestRegistryCountByStatus(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		_ = r.Create(fmt.Sprintf("job-%d", i))
	}
	_ = r.SetStatus("job-0", model.JobStatusProcessing, "working")
	_, _ = r.Finalize("job-1", "done", nil)

	counts := r.CountByStatus()
	if counts[model.JobStatusPending] != 1 || counts[model.JobStatusProcessing] != 1 || counts[model.JobStatusCompleted] != 1 {
		t.Fatalf("unexpected tallies: %v", counts)
	}
}
