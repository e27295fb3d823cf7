// Package generation defines the boundary between the application core and
// external LLM services that produce study content. Concrete generators
// live under internal/platform.
package generation
