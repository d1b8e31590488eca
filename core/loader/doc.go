// Package loader registers the HTTP features of the service.
//
// A Feature owns a route group and decides whether it is enabled. The start
// command registers reconciliation first and integrity second, and the Manager
// loads them in that order:
//
//	mgr := loader.NewManager(logger)
//	mgr.Register(reconciliation.NewFeature(svc))
//	mgr.Register(integrity.NewFeature(st, client, bucket, logger))
//	if err := mgr.LoadAll(app); err != nil {
//	    return err
//	}
//
// Loading stops at the first feature that fails, so a half-registered API is
// never served.
package loader
