package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/couchcryptid/weather-ranking/internal/domain"
)

// ErrRunInProgress is returned by Job.RunReport while another run of the same job is active.
var ErrRunInProgress = errors.New("a run is already in progress")

// Job binds a Pipeline to its location directory and configured addresses so
// that schedulers and HTTP handlers can trigger a full run without arguments.
// At most one run of a Job is active at a time.
type Job struct {
	pipeline  *Pipeline
	directory domain.LocationDirectory
	addresses []string
	mu        sync.Mutex
}

// NewJob creates a Job.
func NewJob(p *Pipeline, directory domain.LocationDirectory, addresses []string) *Job {
	return &Job{pipeline: p, directory: directory, addresses: addresses}
}

// RunReport loads the directory and runs the pipeline once over it.
func (j *Job) RunReport(ctx context.Context) (domain.RunInfo, domain.ReportTable, error) {
	if !j.mu.TryLock() {
		return domain.RunInfo{}, domain.ReportTable{}, ErrRunInProgress
	}
	defer j.mu.Unlock()

	var locations []domain.Location
	if j.directory != nil {
		var err error
		locations, err = j.directory.Locations(ctx)
		if err != nil {
			return domain.RunInfo{}, domain.ReportTable{}, fmt.Errorf("list locations: %w", err)
		}
	}
	return j.pipeline.Run(ctx, Request{Locations: locations, Addresses: j.addresses})
}

// CheckReadiness reports the readiness of the underlying pipeline.
func (j *Job) CheckReadiness(ctx context.Context) error {
	return j.pipeline.CheckReadiness(ctx)
}
