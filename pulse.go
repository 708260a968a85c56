// Package pulse extracts a module/submodule hierarchy from documentation
// websites. It crawls a site within its seed origins, reduces each page to
// its main-content text, and asks a language model for a structured summary
// of the documented product.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, gemini/, gin/).
package pulse
