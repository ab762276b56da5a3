// Package azure implements the vision, language detection, and translation
// services against the cognitive services REST APIs, and assembles them with
// the chat describer into an ai.AIProvider.
package azure
