// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the quest data directory (~/.quest).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: editable agent prompt templates
package file
