// Package logger builds *slog.Logger values with functional options and
// provides attribute constructors shared by the state machine engine, the
// stores and the CLI.
//
// New picks slog.NewTextHandler or slog.NewJSONHandler according to the
// configured Format and wraps it with LogHandlerDecorator, which runs the
// registered ContextExtractor callbacks for every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("STATEKIT_ENV"), "statekit"),
//	    logger.WithContextValue("record_id", recordIDKey{}),
//	)
//	log.InfoContext(ctx, "state transition applied",
//	    logger.Machine("review"),
//	    logger.FromState("Pending"),
//	    logger.ToState("Approved"),
//	)
//
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally.
package logger
