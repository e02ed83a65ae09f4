package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnrecord/pkg/model"
)

type fakeConn struct {
	subject     string
	data        []byte
	publishErr  error
	hadDeadline bool
	closed      bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject, c.data = subject, data
	return c.publishErr
}

func (c *fakeConn) FlushWithContext(ctx context.Context) error {
	_, c.hadDeadline = ctx.Deadline()
	return nil
}

func (c *fakeConn) Close() { c.closed = true }

func TestPublishReport(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "", nil)

	r := &model.Report{
		ReportID:    "REPORT-1700000000000",
		Summary:     model.Summary{TotalVulnerabilities: 3, CriticalCount: 1, LowCount: 2},
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishReport(context.Background(), r))

	assert.Equal(t, DefaultSubject, conn.subject)
	assert.True(t, conn.hadDeadline)

	var ev ReportEvent
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, NewReportEvent(r), ev)

	p.Close()
	assert.True(t, conn.closed)
}

func TestPublishReportError(t *testing.T) {
	conn := &fakeConn{publishErr: errors.New("connection closed")}
	p := NewPublisher(conn, "scans.stored", nil)

	err := p.PublishReport(context.Background(), &model.Report{ReportID: "REPORT-1700000000000"})
	assert.ErrorContains(t, err, "connection closed")
	assert.Equal(t, "scans.stored", conn.subject)
}
