// Package runid tags a unit of work, such as one CLI invocation, with an
// identifier carried in the context.
//
//	ctx = runid.WithContext(ctx, runid.New())
//	log := logger.New(logger.WithContextExtractors(runid.LoggerExtractor()))
//	log.InfoContext(ctx, "document transitioned") // ... run_id=<uuid>
package runid
