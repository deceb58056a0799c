// Package resilience retries operations that can fail transiently, such as
// opening a connection while the backing service is still starting.
//
//	db, err := resilience.Retry(ctx, resilience.Linear(cfg.MaxRetries, time.Second),
//	    func(ctx context.Context, attempt int) (*gorm.DB, error) {
//	        return connect(ctx)
//	    })
package resilience
