package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	errs []error
	tags []map[string]string
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func (r *recorder) Flush(time.Duration) bool { return true }

func TestCaptureRoutesToMonitor(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	defer Init(nil)

	CaptureException(errors.New("boom"), map[string]string{"component": "planner"})
	CaptureException(nil, nil)
	CapturePanic("bad state", nil)

	assert.Len(t, rec.errs, 2)
	assert.EqualError(t, rec.errs[0], "boom")
	assert.Equal(t, "planner", rec.tags[0]["component"])
	assert.EqualError(t, rec.errs[1], "panic: bad state")
	assert.True(t, Flush(time.Second))
}

func TestInitNilRestoresNop(t *testing.T) {
	Init(nil)
	assert.IsType(t, NopMonitor{}, get())
}
