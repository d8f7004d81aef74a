// Package assistant asks a hosted language model to generate, edit, or
// review flow documents.
//
// Prompts are pongo2 templates embedded in the package. They carry the flow
// rules and a full example document. Model output is reduced to its JSON
// object (code fences and prose stripped) and fed to flow.Parse; a parse
// failure is reported as ErrUnparseable, distinct from the validation
// findings attached to a parsed result.
//
// The model is reached through the Completer interface. AnthropicCompleter
// is the production implementation.
package assistant
