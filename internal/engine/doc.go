// Package engine ties a state owner and its snapshot history together
// behind a single lock.
//
// The engine package serves as the main facade over the sub-packages:
//
//   - state: the owner, its snapshots, generators and validators
//   - history: the bounded snapshot stack with cascading revert
//
// # Thread Safety
//
// Owner and History are not meant to be driven from several goroutines at
// once: a Checkpoint racing a Mutate could capture either state. Engine
// serializes every operation with one mutex so the pair behaves as if
// each call ran alone.
//
// # Basic Usage
//
//	cfg := config.Default()
//	e, err := engine.New(ctx, cfg, engine.WithPublisher(bus))
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.Checkpoint(ctx)
//	e.Mutate(ctx)
//	e.Revert(ctx) // back to the checkpoint
//
// # Generators
//
// The generator is chosen by config.GeneratorConfig.Kind: "random",
// "sequence" or "lua". WithGenerator overrides the configured one.
// A Lua generator can be re-read from disk with ReloadGenerator.
package engine
