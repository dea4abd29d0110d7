// Package synth decides, per command of a model, which calling conventions
// a wrapper layer offers and how their signatures look.
//
// Synthesis runs in three steps:
//
//   - Classify assigns every parameter a Role and the command a Shape.
//   - Traits binds every destroyable handle type to its destroy command.
//   - Synthesizer.Command builds the Basic, Enhanced and Unique variants.
//
// Generate runs the synthesizer for every command of a model concurrently
// and collects the descriptors into an Output:
//
//	out, err := synth.Generate(ctx, m, synth.Options{StripPrefix: "api"})
//	if err != nil {
//		return err // cancelled, or the model is invalid
//	}
//	for _, cmd := range out.Commands {
//		for _, v := range cmd.Visible(out.Options.Compatibility) {
//			fmt.Println(v.Signature.Format(v.Name))
//		}
//	}
//
// A command whose parameters fit no recognized shape keeps only its Basic
// variant; the reason is recorded in CommandResult.Err and returned, together
// with trait errors, by Output.Err.
package synth
