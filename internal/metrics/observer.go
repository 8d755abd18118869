package metrics

// StoreObserver receives timings for every storage call made by the service
// layer. status is "ok", "not_found", "invalid" or "error".
type StoreObserver interface {
	ObserveStoreOp(op, status string, seconds float64)
	SetFeatureCount(n int)
}

type nopObserver struct{}

func NewNopObserver() StoreObserver { return nopObserver{} }

func (nopObserver) ObserveStoreOp(string, string, float64) {}
func (nopObserver) SetFeatureCount(int)                    {}
