package pager

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives periodic Sync/Clear sweeps against a PageManager and
// DirectoryManager on CRON expressions, using the same owner identity for
// every sweep it runs. This replaces the ad hoc ticking a caller would
// otherwise have to write around Sync/Clear themselves.
type Scheduler struct {
	pages *PageManager
	dirs  *DirectoryManager
	owner OwnerID

	cron *cron.Cron
	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates a scheduler that sweeps pages and directories on
// behalf of owner. owner should be a dedicated OwnerID — scheduled sweeps
// hold locks the same as any other caller and are therefore visible to
// TryLock contention from interactive callers.
func NewScheduler(pages *PageManager, dirs *DirectoryManager, owner OwnerID) *Scheduler {
	loc, _ := time.LoadLocation("UTC")
	return &Scheduler{
		pages: pages,
		dirs:  dirs,
		owner: owner,
		cron:  cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		jobs:  make(map[string]cron.EntryID),
	}
}

// Start begins running scheduled sweeps. It is safe to call AddSyncJob /
// AddClearJob before or after Start.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. Sweeps already in progress run to completion.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// AddSyncJob registers a named CRON-scheduled Sync sweep over both
// managers. A page-manager failure does not prevent the directory sweep
// from running; both errors are logged rather than propagated, since
// there is no caller left to return them to once the job fires.
func (s *Scheduler) AddSyncJob(name, cronExpr string) error {
	id, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.pages.Sync(s.owner); err != nil {
			log.Printf("pager: scheduled sync %q: page sweep: %v", name, err)
		}
		if err := s.dirs.Sync(s.owner); err != nil {
			log.Printf("pager: scheduled sync %q: directory sweep: %v", name, err)
		}
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs[name] = id
	s.mu.Unlock()
	return nil
}

// AddClearJob registers a named CRON-scheduled Clear sweep over both
// managers.
func (s *Scheduler) AddClearJob(name, cronExpr string) error {
	id, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.pages.Clear(s.owner); err != nil {
			log.Printf("pager: scheduled clear %q: page sweep: %v", name, err)
		}
		if err := s.dirs.Clear(s.owner); err != nil {
			log.Printf("pager: scheduled clear %q: directory sweep: %v", name, err)
		}
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs[name] = id
	s.mu.Unlock()
	return nil
}

// RemoveJob cancels a previously registered job by name.
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.jobs[name]
	if !ok {
		return
	}
	s.cron.Remove(id)
	delete(s.jobs, name)
}
