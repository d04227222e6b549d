package wisdom

import "context"

// MockClient returns a fixed tip; used in tests and when wiring the
// handlers without an upstream service.
type MockClient struct {
	Tip Tip
}

// GenerateTip returns the configured tip, or DefaultTip when unset.
func (m *MockClient) GenerateTip(ctx context.Context) Tip {
	if m.Tip.Title == "" {
		return DefaultTip
	}
	return m.Tip
}
