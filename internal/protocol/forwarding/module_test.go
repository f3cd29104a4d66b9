package forwarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-fabric/config"
	"github.com/dep2p/go-fabric/pkg/interfaces"
	"github.com/dep2p/go-fabric/pkg/types"
)

// TestModule_Lifecycle 测试模块装配和启停
func TestModule_Lifecycle(t *testing.T) {
	tr := NewMockTransport()
	cfg := config.NewConfig()
	cfg.Forwarding.MaxQueueSize = 8

	var svc *Service
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Supply(fx.Annotate(tr, fx.As(new(interfaces.Transport)))),
		Module,
		fx.Populate(&svc),
	)
	app.RequireStart()

	require.NotNil(t, svc)
	assert.Equal(t, 8, svc.Queue().Stats().MaxSize)

	require.NoError(t, svc.Forward(testMessage("m1"), "B", testFeed, types.QoSDefault))
	assert.Eventually(t, func() bool { return tr.Len() == 1 }, time.Second, 5*time.Millisecond)

	app.RequireStop()
}
