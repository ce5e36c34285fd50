package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/quotegate/internal/collector"
	"github.com/newthinker/quotegate/internal/collector/mocks"
	"github.com/newthinker/quotegate/internal/collector/truedata"
	"github.com/newthinker/quotegate/internal/config"
	"github.com/newthinker/quotegate/internal/core"
	"github.com/newthinker/quotegate/internal/market"
	"github.com/newthinker/quotegate/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func vendorConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Vendor.User = "trial"
	cfg.Vendor.Password = "secret"
	return cfg
}

func TestApp_StartWithoutCredentials(t *testing.T) {
	dialed := false
	a := New(config.Defaults(), zap.NewNop(), WithDialer(func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
		dialed = true
		return nil, nil
	}))

	require.NoError(t, a.Start(context.Background()))
	assert.False(t, dialed)
	require.NotNil(t, a.Service())
	assert.Equal(t, market.VendorDisabled, a.Service().VendorStatus())

	q := a.Service().Quote(context.Background(), "RELIANCE.NS")
	assert.Equal(t, core.StatusDisconnected, q.Status)

	assert.NoError(t, a.Close())
}

func TestApp_StartConnectsAndCloseReleases(t *testing.T) {
	ctrl := gomock.NewController(t)
	sess := mocks.NewMockSession(ctrl)
	sess.EXPECT().Close().Return(nil).Times(1)

	var got truedata.LiveConfig
	a := New(vendorConfig(), zap.NewNop(), WithDialer(func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
		got = cfg
		return sess, nil
	}))

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, "trial", got.Credentials.User)
	assert.Equal(t, 8086, got.Port)
	assert.Equal(t, market.VendorConnected, a.Service().VendorStatus())

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestApp_DialFailureIsNotFatal(t *testing.T) {
	a := New(vendorConfig(), zap.NewNop(), WithDialer(func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
		return nil, core.WrapError(core.ErrVendorFailed, errors.New("login rejected"))
	}))

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, market.VendorDisabled, a.Service().VendorStatus())
	assert.NoError(t, a.Close())
}

func TestApp_CloseReportsDisconnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	sess := mocks.NewMockSession(ctrl)
	sess.EXPECT().Close().Return(errors.New("already gone"))

	a := New(vendorConfig(), zap.NewNop(), WithDialer(func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
		return sess, nil
	}))
	require.NoError(t, a.Start(context.Background()))
	assert.Error(t, a.Close())
}

func TestApp_StartTwice(t *testing.T) {
	a := New(config.Defaults(), zap.NewNop())
	require.NoError(t, a.Start(context.Background()))
	assert.Error(t, a.Start(context.Background()))
}

func TestApp_MetricsToggle(t *testing.T) {
	assert.NotNil(t, New(config.Defaults(), nil).Metrics())

	cfg := config.Defaults()
	cfg.Metrics.Enabled = false
	assert.Nil(t, New(cfg, nil).Metrics())
}

func TestApp_GetStats(t *testing.T) {
	a := New(config.Defaults(), zap.NewNop())
	stats := a.GetStats()
	assert.Equal(t, false, stats["started"])
	assert.Equal(t, market.VendorDisabled, stats["vendor"])

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, true, a.GetStats()["started"])
}

// droppableSession is a session whose socket can be lost from the
// vendor side.
type droppableSession struct {
	*mocks.MockSession
	lost chan struct{}
}

func (s *droppableSession) Lost() <-chan struct{} { return s.lost }

func (s *droppableSession) Connected() bool {
	select {
	case <-s.lost:
		return false
	default:
		return true
	}
}

// sessionUp reads the session gauge, or -1 when it cannot be gathered.
func sessionUp(reg *metrics.Registry) float64 {
	mfs, err := reg.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range mfs {
		if mf.GetName() == "quotegate_vendor_session_up" && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestApp_SessionLostDropsGauge(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSession(ctrl)
	mock.EXPECT().Close().Return(nil)
	sess := &droppableSession{MockSession: mock, lost: make(chan struct{})}

	a := New(vendorConfig(), zap.NewNop(), WithDialer(func(ctx context.Context, cfg truedata.LiveConfig, logger *zap.Logger) (collector.Session, error) {
		return sess, nil
	}))
	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, 1.0, sessionUp(a.Metrics()))

	close(sess.lost)
	assert.Eventually(t, func() bool { return sessionUp(a.Metrics()) == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, market.VendorDisconnected, a.Service().VendorStatus())

	require.NoError(t, a.Close())
}
