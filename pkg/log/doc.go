// Package log provides the logging abstraction used by xstore components.
//
// The [Logger] interface takes a message and a list of structured [Field]
// values. Two implementations ship with the package: a zerolog adapter for
// console output and a no-op logger, which is the default for library users
// who do not pass one.
//
// # Usage
//
//	logger := log.NewZerologAdapterWithLogger(
//	    log.NewConsoleLogger(os.Stderr, log.ParseLevel("debug")),
//	)
//	client, err := xstore.New(ctx, cfg, xstore.WithLogger(logger))
//
// Any type with Debug, Info, Warn and Error methods of the right shape can
// be passed instead.
package log
