package ordersync

import "context"

// Job adapts the sync service to the scheduled-job registry.
type Job struct {
	service *Service
}

func NewJob(service *Service) *Job {
	return &Job{service: service}
}

func (j *Job) Name() string { return "work-order-sync" }

func (j *Job) Run(ctx context.Context) error {
	_, err := j.service.Sync(ctx)
	return err
}
