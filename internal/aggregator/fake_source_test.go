package aggregator

import (
	"context"
	"sync"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

// fakeSource 内存数据源（用于单元测试）
type fakeSource struct {
	mu          sync.Mutex
	samples     map[string][]models.Sample
	sampleErrs  map[string]error
	sessions    map[int][]models.Session
	allSessions []models.Session
	sessionErr  error
	calls       []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		samples:    map[string][]models.Sample{},
		sampleErrs: map[string]error{},
		sessions:   map[int][]models.Session{},
	}
}

func (f *fakeSource) QueryAggregate(ctx context.Context, window models.TimeWindow, dataType string) ([]models.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dataType)
	if err := f.sampleErrs[dataType]; err != nil {
		return nil, err
	}
	return f.samples[dataType], nil
}

func (f *fakeSource) QuerySessions(ctx context.Context, window models.TimeWindow, activityType *int) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if activityType == nil {
		f.calls = append(f.calls, "sessions")
		return f.allSessions, nil
	}
	f.calls = append(f.calls, ActivityName(*activityType))
	return f.sessions[*activityType], nil
}
