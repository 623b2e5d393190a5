// Package domain contains the SDMX information model: the typed entity
// graph built by the format readers and consumed by the validator and
// the tabular writers.
//
// Artefact capabilities compose additively through struct embedding
// (Annotable -> Identifiable -> Nameable -> Versionable -> Maintainable)
// rather than through a class hierarchy. A type has exactly the fields
// of every capability it embeds.
//
// Instances are created by a reader during a single parse pass and are
// owned by the resulting Message. They are treated as immutable once
// parsed; derivations (such as copying a Key with one value overridden)
// always produce new values.
package domain
