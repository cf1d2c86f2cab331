/*
Package markov provides a small, in-memory toolkit for building fixed-order
Markov chain models from any ordered sequence of comparable tokens and for
generating new sequences from them by random walk.

A model is built once with Build and is read-only afterwards, so any number
of Generators may walk the same model from different goroutines. Each
Generator owns its own random source; passing a seeded source makes walks
reproducible.

	model, err := markov.Build([]rune("banana"), 2)
	if err != nil {
		return err
	}
	gen, err := markov.NewGenerator(model, markov.NewSource(42))
	if err != nil {
		return err
	}
	out, err := gen.Generate(ctx, []rune("ba"), markov.WithMaxSteps(20))

Two boundary entries are always present in the table: the empty context,
whose only follower is the first input token, and the final context of the
input, which is followed by the stop sentinel. A walk ends when it draws the
sentinel, when a caller supplied bound is reached, or when its context is
cancelled. Walk returns a Walker for step-by-step control, and
its All method ranges over the tokens as they are drawn.

Text can be turned into tokens with the WordTokenizer (words and
punctuation) or the CharTokenizer (one token per character), and rendered
back with Render.
*/
package markov
